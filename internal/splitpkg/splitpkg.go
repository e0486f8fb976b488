// Package splitpkg finds packages contributed by more than one module of a
// resolved module set.
package splitpkg

import (
	"maps"
	"slices"

	"github.com/olehluchkiv/modsplit/internal/modgraph"
	"github.com/olehluchkiv/modsplit/internal/module"
)

// Index reports the packages a module contributes classes to.
type Index interface {
	Packages(m module.ID) []string
}

// Map is package name to contributing modules. It only holds split
// packages, and each module list is sorted.
type Map map[string][]module.ID

// Packages returns the split package names, sorted.
func (m Map) Packages() []string {
	return slices.Sorted(maps.Keys(m))
}

// Detect groups the packages of every resolved module and keeps those
// contributed by two modules or more. Modules outside resolved are ignored:
// they cannot contend for a package in this run.
func Detect(idx Index, resolved *modgraph.Resolved) Map {
	contributors := make(map[string][]module.ID)
	for _, m := range resolved.IDs() {
		for _, pkg := range idx.Packages(m) {
			if !slices.Contains(contributors[pkg], m) {
				contributors[pkg] = append(contributors[pkg], m)
			}
		}
	}

	split := make(Map)
	for _, pkg := range slices.Sorted(maps.Keys(contributors)) {
		if mods := contributors[pkg]; len(mods) > 1 {
			split[pkg] = module.SortIDs(mods)
		}
	}
	return split
}

// Merge combines several indexes, such as scanned classes and the packages
// declared by platform modules whose classes are never scanned.
func Merge(indexes ...Index) Index {
	return merged(indexes)
}

type merged []Index

func (ms merged) Packages(m module.ID) []string {
	var pkgs []string
	for _, idx := range ms {
		for _, p := range idx.Packages(m) {
			if !slices.Contains(pkgs, p) {
				pkgs = append(pkgs, p)
			}
		}
	}
	slices.Sort(pkgs)
	return pkgs
}
