package resolver

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/olehluchkiv/modsplit/internal/classindex"
)

// Resolve turns the command-line inputs into absolute class directories,
// ready for scanning. Duplicates are dropped, keeping the first occurrence,
// and so is any directory inside another input, which the walk of that
// input already covers.
// An input that is missing or not a directory fails with *classindex.IOError.
func Resolve(inputs []string, logger *slog.Logger) ([]string, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no class directories given")
	}

	seen := make(map[string]bool, len(inputs))
	dirs := make([]string, 0, len(inputs))
	for _, input := range inputs {
		absPath, err := filepath.Abs(input)
		if err != nil {
			return nil, &classindex.IOError{Path: input, Err: err}
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, &classindex.IOError{Path: absPath, Err: err}
		}

		if !info.IsDir() {
			return nil, &classindex.IOError{Path: absPath, Err: errors.New("not a directory")}
		}

		if seen[absPath] {
			logger.Debug("skipping duplicate input", "input", input, "dir", absPath)
			continue
		}
		seen[absPath] = true
		dirs = append(dirs, absPath)
		logger.Info("resolved class directory", "input", input, "dir", absPath)
	}

	all := slices.Clone(dirs)
	return slices.DeleteFunc(dirs, func(dir string) bool {
		for _, other := range all {
			if within(dir, other) {
				logger.Debug("skipping nested input", "dir", dir, "parent", other)
				return true
			}
		}
		return false
	}), nil
}

// within reports whether dir lies strictly below parent.
func within(dir, parent string) bool {
	if dir == parent {
		return false
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(dir, prefix)
}
