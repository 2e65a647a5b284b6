package scan_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"photosorter/internal/scan"
	"photosorter/internal/testsupport"
)

func collect(t *testing.T, root string, opts ...scan.Option) ([]string, []error) {
	t.Helper()
	var files []string
	var errs []error
	for path, err := range scan.Walk(root, opts...) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, path)
	}
	slices.Sort(files)
	return files, errs
}

func TestWalkRecursesAndSkipsHidden(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "nested", "deeper", "b.mov"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "nested", "c.txt"), 1)
	testsupport.WriteFile(t, filepath.Join(root, ".hidden.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(root, ".thumbs", "d.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "nested", ".DS_Store"), 1)

	files, errs := collect(t, root)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "nested", "c.txt"),
		filepath.Join(root, "nested", "deeper", "b.mov"),
	}
	if !slices.Equal(files, want) {
		t.Fatalf("unexpected files:\n got %v\nwant %v", files, want)
	}
}

func TestWalkIsDeterministic(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"c.jpg", "a.jpg", "b.jpg"} {
		testsupport.WriteFile(t, filepath.Join(root, name), 1)
	}
	var first, second []string
	for p := range scan.Walk(root) {
		first = append(first, p)
	}
	for p := range scan.Walk(root) {
		second = append(second, p)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("walk order changed between runs: %v vs %v", first, second)
	}
}

func TestWalkReportsMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	files, errs := collect(t, root)
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var readErr *scan.ReadError
	if !errors.As(errs[0], &readErr) {
		t.Fatalf("expected *scan.ReadError, got %T", errs[0])
	}
	if readErr.Dir != root {
		t.Fatalf("unexpected dir %q", readErr.Dir)
	}
	if !errors.Is(errs[0], os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist cause, got %v", errs[0])
	}
}

func TestWalkContinuesPastUnreadableSubfolder(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "bad")
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(bad, "hidden-by-error.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "good", "b.jpg"), 1)

	restore := scan.SetReadDirForTests(func(dir string) ([]os.DirEntry, error) {
		if dir == bad {
			return nil, os.ErrPermission
		}
		return os.ReadDir(dir)
	})
	t.Cleanup(restore)

	files, errs := collect(t, root)
	want := []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "good", "b.jpg"),
	}
	if !slices.Equal(files, want) {
		t.Fatalf("unexpected files:\n got %v\nwant %v", files, want)
	}
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var readErr *scan.ReadError
	if !errors.As(errs[0], &readErr) || readErr.Dir != bad {
		t.Fatalf("expected read error for %s, got %v", bad, errs[0])
	}
}

func TestWalkExcludesDirectories(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "sorted")
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(out, "2020", "01", "b.jpg"), 1)

	files, _ := collect(t, root, scan.WithExclude(out+string(filepath.Separator)))
	if !slices.Equal(files, []string{filepath.Join(root, "a.jpg")}) {
		t.Fatalf("expected output root to be excluded, got %v", files)
	}
}

func TestWalkStopsWhenConsumerBreaks(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		testsupport.WriteFile(t, filepath.Join(root, name), 1)
	}
	count := 0
	for range scan.Walk(root) {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected a single iteration, got %d", count)
	}
}

func TestWalkFollowsFileSymlinksOnly(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()
	target := filepath.Join(elsewhere, "real.jpg")
	testsupport.WriteFile(t, target, 1)
	testsupport.WriteFile(t, filepath.Join(elsewhere, "dir", "inner.jpg"), 1)
	if err := os.Symlink(target, filepath.Join(root, "link.jpg")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(elsewhere, "dir"), filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, _ := collect(t, root)
	if !slices.Equal(files, []string{filepath.Join(root, "link.jpg")}) {
		t.Fatalf("unexpected files %v", files)
	}
}
