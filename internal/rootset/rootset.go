// Package rootset expands a root-set expression into the module IDs an
// analysis run starts from.
package rootset

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/olehluchkiv/modsplit/internal/module"
)

// Kind tags the variant held by an Expression.
type Kind int

const (
	// KindDefault derives the roots from the classes under analysis.
	KindDefault Kind = iota
	// KindExplicit names the root modules.
	KindExplicit
	// KindKeyword is one of the reserved symbolic values.
	KindKeyword
)

var (
	// ErrMixedExpression is returned when a keyword is combined with module names.
	ErrMixedExpression = errors.New("a root-set keyword cannot be combined with module names")
	// ErrEmptyElement is returned for an empty element in a module list.
	ErrEmptyElement = errors.New("empty module name in root set")
)

// Expression is a root-set expression: an explicit set of modules, a
// keyword, or absent. The zero value is the default expression.
type Expression struct {
	kind    Kind
	ids     []module.ID
	keyword module.Keyword
}

// Default returns the absent expression.
func Default() Expression { return Expression{} }

// Explicit returns an expression naming ids. Order is kept so that the
// first unknown id is reported.
func Explicit(ids ...module.ID) Expression {
	return Expression{kind: KindExplicit, ids: slices.Clone(ids)}
}

// KeywordOf returns a keyword expression.
func KeywordOf(k module.Keyword) Expression {
	return Expression{kind: KindKeyword, keyword: k}
}

// Kind reports which variant e holds.
func (e Expression) Kind() Kind { return e.kind }

// IDs returns the modules of an explicit expression.
func (e Expression) IDs() []module.ID { return slices.Clone(e.ids) }

// Keyword returns the keyword of a keyword expression.
func (e Expression) Keyword() module.Keyword { return e.keyword }

func (e Expression) String() string {
	switch e.kind {
	case KindDefault:
		return "<default>"
	case KindExplicit:
		parts := make([]string, len(e.ids))
		for i, id := range e.ids {
			parts[i] = string(id)
		}
		return strings.Join(parts, ",")
	case KindKeyword:
		return e.keyword.String()
	default:
		return "<invalid>"
	}
}

// Parse reads the command-line form: empty for the default, a reserved
// keyword, or a comma-separated list of module names.
func Parse(s string) (Expression, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default(), nil
	}
	parts := strings.Split(s, ",")
	ids := make([]module.ID, 0, len(parts))
	keywords := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Expression{}, fmt.Errorf("parsing %q: %w", s, ErrEmptyElement)
		}
		if _, ok := module.ParseKeyword(p); ok {
			keywords++
		}
		ids = append(ids, module.ID(p))
	}
	if keywords > 0 {
		if len(ids) != 1 {
			return Expression{}, fmt.Errorf("parsing %q: %w", s, ErrMixedExpression)
		}
		k, _ := module.ParseKeyword(string(ids[0]))
		return KeywordOf(k), nil
	}
	return Explicit(ids...), nil
}

// DependencySource reports the named modules the analyzed classes depend on.
// *classindex.Index implements it.
type DependencySource interface {
	Dependencies(cat *module.Catalog) []module.ID
}

// Resolve expands expr into a sorted set of module IDs.
//
// Explicit ids are checked in order and the first one missing from the
// catalog fails with *module.UnknownModuleError. Keywords are expanded by
// the catalog. The default expression takes every module deps reports,
// which may be none.
func Resolve(expr Expression, cat *module.Catalog, deps DependencySource) ([]module.ID, error) {
	switch expr.kind {
	case KindExplicit:
		for _, id := range expr.ids {
			if !cat.Contains(id) {
				return nil, &module.UnknownModuleError{ID: id}
			}
		}
		return slices.Compact(module.SortIDs(slices.Clone(expr.ids))), nil
	case KindKeyword:
		return cat.ResolveKeyword(expr.keyword), nil
	case KindDefault:
		if deps == nil {
			return nil, nil
		}
		return deps.Dependencies(cat), nil
	default:
		panic(fmt.Sprintf("rootset: unhandled expression kind %d", expr.kind))
	}
}
