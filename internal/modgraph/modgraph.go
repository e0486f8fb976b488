// Package modgraph closes a root set of modules over their requires edges.
package modgraph

import (
	"slices"

	"golang.org/x/tools/container/intsets"

	"github.com/olehluchkiv/modsplit/internal/module"
)

// Options controls closure.
type Options struct {
	// IncludeUnnamed adds the unnamed module to the result whatever the roots are.
	IncludeUnnamed bool
}

// Resolved is the set of modules taking part in one analysis run. It is
// closed under requires and immutable.
type Resolved struct {
	ids []module.ID
	set map[module.ID]bool
}

// NewResolved wraps ids without computing any closure.
func NewResolved(ids ...module.ID) *Resolved {
	r := &Resolved{set: make(map[module.ID]bool, len(ids))}
	for _, id := range ids {
		if !r.set[id] {
			r.set[id] = true
			r.ids = append(r.ids, id)
		}
	}
	module.SortIDs(r.ids)
	return r
}

// IDs returns the modules in sorted order.
func (r *Resolved) IDs() []module.ID { return slices.Clone(r.ids) }

// Contains reports whether id is resolved.
func (r *Resolved) Contains(id module.ID) bool { return r.set[id] }

// Len returns the number of resolved modules.
func (r *Resolved) Len() int { return len(r.ids) }

// Close computes the transitive closure of roots over requires, breadth
// first. Each module is visited once, so cyclic requires terminate. Every
// requires edge is followed. A root or requirement missing from the catalog
// fails with *module.UnknownModuleError.
func Close(roots []module.ID, cat *module.Catalog, opts Options) (*Resolved, error) {
	var visited intsets.Sparse
	queue := make([]int, 0, len(roots))

	for _, id := range roots {
		i, ok := cat.Index(id)
		if !ok {
			return nil, &module.UnknownModuleError{ID: id}
		}
		if visited.Insert(i) {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		from := cat.At(i).Name
		reqs, err := cat.RequiresOf(from)
		if err != nil {
			return nil, err
		}
		for _, req := range reqs {
			j, ok := cat.Index(req)
			if !ok {
				return nil, &module.UnknownModuleError{ID: req, From: from}
			}
			if visited.Insert(j) {
				queue = append(queue, j)
			}
		}
	}

	ids := make([]module.ID, 0, visited.Len()+1)
	for _, i := range visited.AppendTo(nil) {
		ids = append(ids, cat.At(i).Name)
	}
	if opts.IncludeUnnamed {
		ids = append(ids, module.Unnamed)
	}
	return NewResolved(ids...), nil
}
