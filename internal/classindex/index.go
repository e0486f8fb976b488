// Package classindex scans directories of compiled classes and records, for
// every class, its package, the module that owns it and the classes it
// references.
package classindex

import (
	"cmp"
	"errors"
	"slices"

	"github.com/olehluchkiv/modsplit/internal/module"
)

// Entry is one scanned class. Entries are immutable once the index is built.
type Entry struct {
	Name    string
	Package string
	Module  module.ID
	Path    string
	Refs    []string
}

// Index is the result of a scan.
type Index struct {
	entries   []Entry
	owners    map[string][]module.ID
	packages  map[module.ID][]string
	present   map[string]bool
	modules   []module.Descriptor
	malformed []*MalformedClassError
}

// New builds an index from already-known entries. modules lists the named
// compilation units the entries were found in; their Packages are filled in
// from the entries, and automatic modules export all of them.
func New(entries []Entry, modules []module.Descriptor) *Index {
	idx := &Index{
		entries:  slices.Clone(entries),
		owners:   make(map[string][]module.ID),
		packages: make(map[module.ID][]string),
		present:  make(map[string]bool),
	}
	slices.SortStableFunc(idx.entries, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.Module, b.Module), cmp.Compare(a.Name, b.Name))
	})

	for _, e := range idx.entries {
		if !slices.Contains(idx.owners[e.Name], e.Module) {
			idx.owners[e.Name] = append(idx.owners[e.Name], e.Module)
		}
		idx.present[e.Package] = true
		if !slices.Contains(idx.packages[e.Module], e.Package) {
			idx.packages[e.Module] = append(idx.packages[e.Module], e.Package)
		}
	}
	for m := range idx.packages {
		slices.Sort(idx.packages[m])
	}

	idx.modules = make([]module.Descriptor, 0, len(modules))
	for _, d := range modules {
		d.Packages = slices.Clone(idx.packages[d.Name])
		if d.Automatic {
			d.Exports = slices.Clone(d.Packages)
		}
		idx.modules = append(idx.modules, d)
	}
	slices.SortFunc(idx.modules, func(a, b module.Descriptor) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return idx
}

// Len returns the number of classes in the index.
func (idx *Index) Len() int { return len(idx.entries) }

// Entries returns every class ordered by module, then name. The slice must
// not be modified.
func (idx *Index) Entries() []Entry { return idx.entries }

// Owners returns the modules that contain a class named className, sorted.
func (idx *Index) Owners(className string) []module.ID {
	return idx.owners[className]
}

// Packages returns the packages that have classes in module m, sorted.
func (idx *Index) Packages(m module.ID) []string {
	return idx.packages[m]
}

// HasPackage reports whether any scanned class is in pkg.
func (idx *Index) HasPackage(pkg string) bool {
	return idx.present[pkg]
}

// Modules returns the descriptors of the named units found by the scan.
func (idx *Index) Modules() []module.Descriptor {
	return slices.Clone(idx.modules)
}

// HasUnnamed reports whether any class belongs to the unnamed module.
func (idx *Index) HasUnnamed() bool {
	return len(idx.packages[module.Unnamed]) > 0
}

// Malformed returns the class files that could not be parsed.
func (idx *Index) Malformed() []*MalformedClassError {
	return idx.malformed
}

// Err joins the per-file errors recorded during the scan. It is nil when
// every class file parsed.
func (idx *Index) Err() error {
	errs := make([]error, len(idx.malformed))
	for i, e := range idx.malformed {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Dependencies returns the named modules the scanned classes depend on:
// the named modules owning scanned classes, plus every module a class
// references. A reference to a scanned class maps to its owners; any other
// reference maps to the cataloged modules exporting its package.
func (idx *Index) Dependencies(cat *module.Catalog) []module.ID {
	seen := make(map[module.ID]bool)
	add := func(m, from module.ID) {
		if m != module.Unnamed && m != from {
			seen[m] = true
		}
	}
	for _, e := range idx.entries {
		add(e.Module, "")
		for _, ref := range e.Refs {
			if owners := idx.owners[ref]; len(owners) > 0 {
				for _, m := range owners {
					add(m, e.Module)
				}
				continue
			}
			for _, m := range cat.ExportersOf(PackageOf(ref)) {
				add(m, e.Module)
			}
		}
	}
	deps := make([]module.ID, 0, len(seen))
	for m := range seen {
		deps = append(deps, m)
	}
	return module.SortIDs(deps)
}
