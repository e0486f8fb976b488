// Package module models the modules taking part in an analysis run: their
// descriptors, the catalog that indexes them, and the errors raised when a
// module reference cannot be honoured.
package module

import "slices"

// ID names a module. It is opaque: two modules are the same iff their IDs are equal.
type ID string

// Unnamed owns every class that is not inside a named compilation unit.
const Unnamed ID = "unnamed"

// Origin records where a descriptor came from.
type Origin int

const (
	// System modules belong to the hosting platform. Their classes are never scanned.
	System Origin = iota
	// Analyzed modules were discovered while scanning the input directories.
	Analyzed
)

func (o Origin) String() string {
	switch o {
	case System:
		return "system"
	case Analyzed:
		return "analyzed"
	default:
		return "unknown"
	}
}

// Keyword is a symbolic root-set value. The set is closed.
type Keyword int

const (
	// AllSystem expands to every module known to the platform.
	AllSystem Keyword = iota + 1
	// AllDefault expands to the platform's default root modules.
	AllDefault
)

func (k Keyword) String() string {
	switch k {
	case AllSystem:
		return "ALL-SYSTEM"
	case AllDefault:
		return "ALL-DEFAULT"
	default:
		return "unknown-keyword"
	}
}

// ParseKeyword maps a reserved name to its keyword.
func ParseKeyword(s string) (Keyword, bool) {
	switch s {
	case "ALL-SYSTEM":
		return AllSystem, true
	case "ALL-DEFAULT":
		return AllDefault, true
	default:
		return 0, false
	}
}

// IsReserved reports whether name may not be used as a module ID.
func IsReserved(name string) bool {
	if _, ok := ParseKeyword(name); ok {
		return true
	}
	return ID(name) == Unnamed
}

// Descriptor is the read-only description of one module.
type Descriptor struct {
	Name        ID       `yaml:"name"`
	Requires    []ID     `yaml:"requires,omitempty"`
	Exports     []string `yaml:"exports,omitempty"`
	Packages    []string `yaml:"packages,omitempty"`
	Automatic   bool     `yaml:"automatic,omitempty"`
	DefaultRoot bool     `yaml:"default_root,omitempty"`
	Origin      Origin   `yaml:"-"`
}

// Exported reports whether pkg is exported. Automatic modules export
// everything they contain.
func (d *Descriptor) Exported(pkg string) bool {
	if d.Automatic {
		return slices.Contains(d.Packages, pkg)
	}
	return slices.Contains(d.Exports, pkg)
}

// SortIDs sorts ids in place and returns them.
func SortIDs(ids []ID) []ID {
	slices.Sort(ids)
	return ids
}
