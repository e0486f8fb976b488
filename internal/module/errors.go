package module

import "fmt"

// UnknownModuleError reports a reference to a module absent from the catalog.
// From is set when the reference came from another module's requires.
type UnknownModuleError struct {
	ID   ID
	From ID
}

func (e *UnknownModuleError) Error() string {
	if e.From != "" {
		return fmt.Sprintf("module %s not found, required by %s", e.ID, e.From)
	}
	return fmt.Sprintf("module %s not found", e.ID)
}

// DuplicateModuleError reports a module ID declared more than once.
type DuplicateModuleError struct {
	ID     ID
	First  Origin
	Second Origin
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("module %s declared twice (%s and %s)", e.ID, e.First, e.Second)
}

// InvalidDescriptorError reports a descriptor that cannot be cataloged.
type InvalidDescriptorError struct {
	Source string
	Reason string
}

func (e *InvalidDescriptorError) Error() string {
	if e.Source == "" {
		return "invalid module descriptor: " + e.Reason
	}
	return fmt.Sprintf("invalid module descriptor %s: %s", e.Source, e.Reason)
}
