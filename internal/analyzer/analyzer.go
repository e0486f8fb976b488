// Package analyzer walks class-to-class references of the classes owned by
// a resolved module set.
package analyzer

import (
	"context"
	"log/slog"

	"github.com/olehluchkiv/modsplit/internal/classindex"
	"github.com/olehluchkiv/modsplit/internal/modgraph"
	"github.com/olehluchkiv/modsplit/internal/module"
)

// Analyze records one edge per reference made by a class whose module is
// resolved. The target module is the first resolved owner of the referenced
// class, otherwise the first resolved module exporting its package, then
// the first resolved module declaring it. References nothing provides are
// reported in Result.Unresolved.
func Analyze(ctx context.Context, resolved *modgraph.Resolved, idx *classindex.Index, cat *module.Catalog, opts Options, logger *slog.Logger) (*Result, error) {
	logger = logger.With("component", "analyzer")
	result := &Result{Modules: resolved.IDs(), Strict: opts.Strict}

	for _, e := range idx.Entries() {
		if !resolved.Contains(e.Module) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Classes++

		for _, ref := range e.Refs {
			edge := Edge{From: e.Name, FromModule: e.Module, To: ref}
			edge.ToModule = target(ref, resolved, idx, cat)
			if edge.ToModule == "" {
				result.Unresolved = append(result.Unresolved, edge)
				logger.Debug("unresolved reference", "from", e.Name, "to", ref)
				continue
			}
			if d, ok := cat.Lookup(edge.ToModule); ok {
				edge.ToSystem = d.Origin == module.System
			}
			result.Edges = append(result.Edges, edge)
		}
	}

	logger.Info("analysis complete",
		"classes", result.Classes,
		"edges", len(result.Edges),
		"unresolved", len(result.Unresolved))
	return result, nil
}

func target(ref string, resolved *modgraph.Resolved, idx *classindex.Index, cat *module.Catalog) module.ID {
	for _, m := range idx.Owners(ref) {
		if resolved.Contains(m) {
			return m
		}
	}
	pkg := classindex.PackageOf(ref)
	for _, m := range cat.ExportersOf(pkg) {
		if resolved.Contains(m) {
			return m
		}
	}
	for _, m := range cat.DeclarersOf(pkg) {
		if resolved.Contains(m) {
			return m
		}
	}
	return ""
}
