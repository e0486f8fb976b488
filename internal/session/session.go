// Package session ties the engine together for one set of class directories:
// it scans them once, catalogs the modules, and then answers any number of
// independent root-set resolutions.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/olehluchkiv/modsplit/internal/analyzer"
	"github.com/olehluchkiv/modsplit/internal/classindex"
	"github.com/olehluchkiv/modsplit/internal/modgraph"
	"github.com/olehluchkiv/modsplit/internal/module"
	"github.com/olehluchkiv/modsplit/internal/resolver"
	"github.com/olehluchkiv/modsplit/internal/rootset"
	"github.com/olehluchkiv/modsplit/internal/splitpkg"
)

// ErrClosed is returned by a session used after Close.
var ErrClosed = errors.New("session is closed")

// Config holds parameters for opening a session.
type Config struct {
	Paths       []string
	Platform    []module.Descriptor
	Concurrency int
}

// Session owns the class index and module catalog of one input set. It is
// safe for concurrent use; Close waits for running resolutions and analyses.
type Session struct {
	mu     sync.RWMutex
	idx    *classindex.Index
	cat    *module.Catalog
	logger *slog.Logger
}

// Open resolves and scans the input directories and catalogs the platform
// and scanned modules. Per-file scan problems are kept on the session; see
// Malformed.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Session, error) {
	logger = logger.With("component", "session")

	dirs, err := resolver.Resolve(cfg.Paths, logger)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	idx, err := classindex.Scan(ctx, dirs, classindex.Options{Concurrency: cfg.Concurrency}, logger)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return New(idx, cfg.Platform, logger)
}

// New builds a session over an existing index.
func New(idx *classindex.Index, platform []module.Descriptor, logger *slog.Logger) (*Session, error) {
	cat, err := module.Load(platform, idx.Modules())
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	logger.Info("catalog loaded", "modules", cat.Len(), "classes", idx.Len())
	return &Session{idx: idx, cat: cat, logger: logger}, nil
}

// Catalog returns the module catalog.
func (s *Session) Catalog() *module.Catalog { return s.cat }

// Index returns the class index, nil once closed.
func (s *Session) Index() *classindex.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// Malformed returns the class files the scan could not parse.
func (s *Session) Malformed() []*classindex.MalformedClassError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return nil
	}
	return s.idx.Malformed()
}

// Close releases the index. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = nil
	return nil
}

// Resolution is the outcome of resolving one root-set expression. It is
// computed from scratch on every Resolve call.
type Resolution struct {
	Expression rootset.Expression
	Roots      []module.ID

	resolved *modgraph.Resolved
	split    splitpkg.Map
	session  *Session
}

// Resolve expands expr, closes it over requires and detects split packages.
// Any structural error is returned before a resolution exists, so callers
// never see a partially resolved module set.
func (s *Session) Resolve(expr rootset.Expression) (*Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return nil, ErrClosed
	}

	roots, err := rootset.Resolve(expr, s.cat, s.idx)
	if err != nil {
		return nil, fmt.Errorf("root set %s: %w", expr, err)
	}

	resolved, err := modgraph.Close(roots, s.cat, modgraph.Options{IncludeUnnamed: s.idx.HasUnnamed()})
	if err != nil {
		return nil, fmt.Errorf("module graph: %w", err)
	}

	split := splitpkg.Detect(splitpkg.Merge(s.idx, platformPackages{s.cat, s.idx}), resolved)

	s.logger.Info("resolution complete",
		"roots", expr.String(),
		"modules", resolved.Len(),
		"split_packages", len(split))

	return &Resolution{
		Expression: expr,
		Roots:      roots,
		resolved:   resolved,
		split:      split,
		session:    s,
	}, nil
}

// Modules returns the resolved module set in sorted order.
func (r *Resolution) Modules() []module.ID { return r.resolved.IDs() }

// Resolved returns the resolved module set.
func (r *Resolution) Resolved() *modgraph.Resolved { return r.resolved }

// SplitPackages returns the split packages of this resolution.
func (r *Resolution) SplitPackages() splitpkg.Map { return r.split }

// Analyze runs the dependency analyzer over the resolved modules and applies opts.
func (r *Resolution) Analyze(ctx context.Context, opts analyzer.Options) (*analyzer.Result, error) {
	s := r.session
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return nil, ErrClosed
	}
	result, err := analyzer.Analyze(ctx, r.resolved, s.idx, s.cat, opts, s.logger)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return analyzer.Filter(result, opts), nil
}

// platformPackages exposes the declared packages of platform modules, whose
// classes are never scanned. Only packages that also hold scanned classes are
// reported, so a split always involves a class under analysis.
type platformPackages struct {
	cat *module.Catalog
	idx *classindex.Index
}

func (p platformPackages) Packages(m module.ID) []string {
	d, ok := p.cat.Lookup(m)
	if !ok || d.Origin != module.System {
		return nil
	}
	var pkgs []string
	for _, pkg := range d.Packages {
		if p.idx.HasPackage(pkg) {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs
}
