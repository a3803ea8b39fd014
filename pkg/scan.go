package docdedup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScanTree walks the directory tree beneath root and returns the absolute
// path of every regular file exactly once. Directory entries are visited in
// lexical order, so the result is deterministic for a fixed filesystem
// state. Symbolic links are reported but never followed, so the walk cannot
// escape root.
func ScanTree(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	logger := GetLogger("scan")

	var paths []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: warn and keep walking the rest
			logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			paths = append(paths, path)
			if IsDebugEnabled("scan") {
				logger.Trace().Str("path", path).Msg("found file")
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	logger.Debug().Int("files", len(paths)).Str("root", absRoot).Msg("scan complete")
	return paths, nil
}

// FilterByExtension returns the subset of paths whose lowercased extension
// appears in exts, preserving order
func FilterByExtension(paths []string, exts map[string]bool) []string {
	var filtered []string
	for _, path := range paths {
		if exts[strings.ToLower(filepath.Ext(path))] {
			filtered = append(filtered, path)
		}
	}
	return filtered
}
