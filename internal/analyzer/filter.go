package analyzer

import (
	"strings"

	"github.com/olehluchkiv/modsplit/internal/classindex"
)

// Filter applies filtering options to the analysis result. Unresolved
// references are never filtered since they decide Success.
func Filter(result *Result, opts Options) *Result {
	filtered := &Result{
		Unresolved: result.Unresolved,
		Classes:    result.Classes,
		Modules:    result.Modules,
		Strict:     result.Strict,
	}

	for _, edge := range result.Edges {
		fromPkg := classindex.PackageOf(edge.From)
		toPkg := classindex.PackageOf(edge.To)

		if !opts.IncludeSystem && edge.ToSystem {
			continue
		}

		if opts.ExcludeSamePackage && fromPkg == toPkg && edge.FromModule == edge.ToModule {
			continue
		}

		if opts.ExcludeSameModule && edge.FromModule == edge.ToModule {
			continue
		}

		// Filter by package prefix
		if opts.Pattern != "" {
			if !matchesPrefix(fromPkg, opts.Pattern) && !matchesPrefix(toPkg, opts.Pattern) {
				continue
			}
		}

		filtered.Edges = append(filtered.Edges, edge)
	}

	return filtered
}

// matchesPrefix treats pattern as a package prefix on segment boundaries, so
// "com.acme" matches "com.acme.util" but not "com.acmecorp".
func matchesPrefix(pkg, pattern string) bool {
	pattern = strings.TrimSuffix(pattern, ".")
	return pkg == pattern || strings.HasPrefix(pkg, pattern+".")
}
