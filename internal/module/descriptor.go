package module

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// DescriptorFile is the file that marks a directory as a named compilation unit.
const DescriptorFile = "module.yaml"

// DecodeDescriptor reads one YAML descriptor from r. Unknown fields are rejected.
func DecodeDescriptor(r io.Reader, source string) (Descriptor, error) {
	var d Descriptor
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return Descriptor{}, &InvalidDescriptorError{Source: source, Reason: "empty document"}
		}
		return Descriptor{}, &InvalidDescriptorError{Source: source, Reason: err.Error()}
	}
	if err := d.Validate(); err != nil {
		var ide *InvalidDescriptorError
		if errors.As(err, &ide) {
			ide.Source = source
		}
		return Descriptor{}, err
	}
	return d, nil
}

// ReadDescriptorFile decodes the descriptor stored at path.
func ReadDescriptorFile(path string) (Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return Descriptor{}, err
	}
	defer f.Close()
	return DecodeDescriptor(f, path)
}

// Validate checks the parts of a descriptor that do not depend on other modules.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return &InvalidDescriptorError{Reason: "missing name"}
	}
	if IsReserved(string(d.Name)) {
		return &InvalidDescriptorError{Reason: fmt.Sprintf("%q is a reserved name", d.Name)}
	}
	if slices.Contains(d.Requires, d.Name) {
		return &InvalidDescriptorError{Reason: fmt.Sprintf("module %s requires itself", d.Name)}
	}
	for _, r := range d.Requires {
		if r == "" || IsReserved(string(r)) {
			return &InvalidDescriptorError{Reason: fmt.Sprintf("module %s has invalid requires entry %q", d.Name, r)}
		}
	}
	return nil
}
