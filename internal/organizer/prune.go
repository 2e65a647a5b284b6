package organizer

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// pruneEmptyDirs removes empty directories below root, deepest first, and
// returns the ones it removed. root itself and anything under exclude are
// kept. Hidden directories are left alone since traversal never visited them.
func pruneEmptyDirs(root, exclude string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path == exclude {
			return filepath.SkipDir
		}
		if path != root && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		if path != root {
			dirs = append(dirs, path)
		}
		return nil
	})

	slices.Reverse(dirs)
	var removed []string
	for _, dir := range dirs {
		// os.Remove refuses non-empty directories.
		if err := os.Remove(dir); err == nil {
			removed = append(removed, dir)
		}
	}
	return removed
}
