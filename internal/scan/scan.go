package scan

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// readDir is swappable so tests can simulate unreadable directories without
// relying on permission bits (which root ignores).
var readDir = os.ReadDir

// SetReadDirForTests replaces the directory lister and returns a restore func.
func SetReadDirForTests(fn func(string) ([]os.DirEntry, error)) func() {
	prev := readDir
	readDir = fn
	return func() { readDir = prev }
}

// ReadError reports a directory that could not be listed.
type ReadError struct {
	Dir string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read directory %s: %v", e.Dir, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Option customizes a walk.
type Option func(*options)

type options struct {
	exclude []string
}

// WithExclude prunes the given directories (and everything below them) from
// the walk. Paths are compared after filepath.Clean.
func WithExclude(paths ...string) Option {
	return func(o *options) {
		for _, p := range paths {
			if strings.TrimSpace(p) == "" {
				continue
			}
			o.exclude = append(o.exclude, filepath.Clean(p))
		}
	}
}

// Walk lazily enumerates the files below root, depth-first in directory
// listing order (sorted by name).
//
// Entries whose name starts with "." are skipped entirely. A directory that
// cannot be listed yields ("", *ReadError) and the walk moves on to the next
// sibling, so one bad subfolder never hides the rest of the tree. Directory
// handles are released before descending.
func Walk(root string, opts ...Option) iter.Seq2[string, error] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	root = filepath.Clean(root)
	return func(yield func(string, error) bool) {
		walkDir(root, &o, yield)
	}
}

func walkDir(dir string, o *options, yield func(string, error) bool) bool {
	entries, err := readDir(dir)
	if err != nil {
		if !yield("", &ReadError{Dir: dir, Err: err}) {
			return false
		}
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		if entry.IsDir() {
			if o.excluded(path) {
				continue
			}
			if !walkDir(path, o, yield) {
				return false
			}
			continue
		}
		if !isFileEntry(path, entry) {
			continue
		}
		if !yield(path, nil) {
			return false
		}
	}
	return true
}

// isFileEntry accepts regular files and symlinks that resolve to regular
// files. Symlinked directories are not followed.
func isFileEntry(path string, entry fs.DirEntry) bool {
	mode := entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (o *options) excluded(path string) bool {
	for _, base := range o.exclude {
		if path == base {
			return true
		}
	}
	return false
}
