package analyzer

import "github.com/olehluchkiv/modsplit/internal/module"

// Edge captures that class From references class To.
type Edge struct {
	From       string
	FromModule module.ID
	To         string
	ToModule   module.ID // empty when no resolved module provides To
	ToSystem   bool      // true if ToModule is a platform module
}

// Result holds the complete analysis output.
type Result struct {
	Edges      []Edge
	Unresolved []Edge
	Classes    int         // classes walked
	Modules    []module.ID // resolved modules the walk was restricted to
	Strict     bool
}

// Success reports whether the analysis passed. Unresolved references are
// reported as not found and only fail a strict analysis.
func (r *Result) Success() bool {
	return !r.Strict || len(r.Unresolved) == 0
}

// Options controls the analysis and which edges survive Filter.
type Options struct {
	Strict             bool   // unresolved references fail the analysis
	Pattern            string // package prefix; an edge is kept if either end matches
	ExcludeSamePackage bool
	ExcludeSameModule  bool
	IncludeSystem      bool // keep edges into platform modules
}
