package classindex

import "fmt"

// IOError reports an input path that could not be read. It aborts the scan.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// MalformedClassError reports one class file that could not be parsed.
// It is recorded on the index and never aborts the scan.
type MalformedClassError struct {
	Path   string
	Reason error
}

func (e *MalformedClassError) Error() string {
	return fmt.Sprintf("malformed class %s: %v", e.Path, e.Reason)
}

func (e *MalformedClassError) Unwrap() error { return e.Reason }
