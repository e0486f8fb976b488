package classindex

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/olehluchkiv/modsplit/internal/module"
)

// Options controls scanning.
type Options struct {
	// Concurrency bounds how many roots are scanned at once. Zero means GOMAXPROCS.
	Concurrency int
}

type rootResult struct {
	entries   []Entry
	modules   []module.Descriptor
	malformed []*MalformedClassError
}

// Scan walks every path and indexes the class files found. A directory
// holding module.yaml starts a named compilation unit that owns every class
// below it; other classes belong to the unnamed module.
//
// A missing or unreadable path fails the scan with *IOError. A class file
// that cannot be parsed is recorded on the index as *MalformedClassError and
// scanning continues.
func Scan(ctx context.Context, paths []string, opts Options, logger *slog.Logger) (*Index, error) {
	logger = logger.With("component", "classindex")

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]rootResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, root := range paths {
		g.Go(func() error {
			res, err := scanRoot(gctx, root, logger)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		entries   []Entry
		modules   []module.Descriptor
		malformed []*MalformedClassError
	)
	seen := make(map[module.ID]bool)
	for _, res := range results {
		entries = append(entries, res.entries...)
		malformed = append(malformed, res.malformed...)
		for _, d := range res.modules {
			if seen[d.Name] {
				return nil, &module.DuplicateModuleError{ID: d.Name, First: module.Analyzed, Second: module.Analyzed}
			}
			seen[d.Name] = true
			modules = append(modules, d)
		}
	}

	idx := New(entries, modules)
	idx.malformed = malformed
	logger.Info("scan complete",
		"roots", len(paths),
		"classes", idx.Len(),
		"modules", len(modules),
		"malformed", len(malformed))
	return idx, nil
}

func scanRoot(ctx context.Context, root string, logger *slog.Logger) (rootResult, error) {
	var res rootResult

	info, err := os.Stat(root)
	if err != nil {
		return res, &IOError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return res, &IOError{Path: root, Err: errors.New("not a directory")}
	}

	units := make(map[string]module.ID)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Path: path, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			unit, ok := units[filepath.Dir(path)]
			if !ok || path == root {
				unit = module.Unnamed
			}
			desc, found, err := readUnit(path)
			if err != nil {
				return err
			}
			if found {
				unit = desc.Name
				res.modules = append(res.modules, desc)
				logger.Debug("found module", "module", desc.Name, "dir", path)
			}
			units[path] = unit
			return nil
		}

		name := d.Name()
		if filepath.Ext(name) != ".class" || name == "module-info.class" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return &IOError{Path: path, Err: err}
		}
		cf, err := ParseClass(data)
		if err != nil {
			logger.Warn("skipping malformed class", "path", path, "error", err)
			res.malformed = append(res.malformed, &MalformedClassError{Path: path, Reason: err})
			return nil
		}
		owner := units[filepath.Dir(path)]
		res.entries = append(res.entries, Entry{
			Name:    cf.Name,
			Package: PackageOf(cf.Name),
			Module:  owner,
			Path:    path,
			Refs:    cf.Refs,
		})
		return nil
	})
	if err != nil {
		return rootResult{}, err
	}
	return res, nil
}

// readUnit loads dir/module.yaml if present.
func readUnit(dir string) (module.Descriptor, bool, error) {
	path := filepath.Join(dir, module.DescriptorFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return module.Descriptor{}, false, nil
		}
		return module.Descriptor{}, false, &IOError{Path: path, Err: err}
	}
	d, err := module.ReadDescriptorFile(path)
	if err != nil {
		var ide *module.InvalidDescriptorError
		if errors.As(err, &ide) {
			return module.Descriptor{}, false, err
		}
		return module.Descriptor{}, false, &IOError{Path: path, Err: err}
	}
	d.Origin = module.Analyzed
	return d, true, nil
}
