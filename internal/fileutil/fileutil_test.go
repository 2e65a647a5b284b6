package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Digest(path)
	if err != nil {
		t.Fatal(err)
	}
	const want = "sha256:b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if d.String() != want {
		t.Fatalf("digest = %s, want %s", d, want)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("invalid digest: %v", err)
	}
}

func TestDigest_MissingFile(t *testing.T) {
	if _, err := Digest(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSameContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	d := filepath.Join(dir, "d")
	for path, content := range map[string]string{a: "same", b: "same", c: "diff", d: "longer"} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		x, y string
		want bool
	}{
		{a, b, true},
		{a, c, false},
		{a, d, false},
	}
	for _, tt := range tests {
		got, err := SameContent(tt.x, tt.y)
		if err != nil {
			t.Fatalf("SameContent(%s, %s): %v", tt.x, tt.y, err)
		}
		if got != tt.want {
			t.Fatalf("SameContent(%s, %s) = %v, want %v", filepath.Base(tt.x), filepath.Base(tt.y), got, tt.want)
		}
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o640); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	srcInfo, _ := os.Stat(src)
	dstInfo, _ := os.Stat(dst)
	if !srcInfo.ModTime().Equal(dstInfo.ModTime()) {
		t.Fatalf("expected mtime to be preserved: %v vs %v", srcInfo.ModTime(), dstInfo.ModTime())
	}
}

func TestCopyFileVerified_RefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "existing" {
		t.Fatalf("destination was overwritten: %q", got)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileVerified(filepath.Join(dir, "nonexistent"), filepath.Join(dir, "dst.bin"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMove_SameDevice(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "out", "dst.jpg")
	if err := os.WriteFile(src, []byte("pixels"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Move(src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err = %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pixels" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestMove_CrossDeviceFallsBackToCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mov")
	dst := filepath.Join(dir, "dst.mov")
	if err := os.WriteFile(src, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}

	restore := SetRenameForTests(func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: unix.EXDEV}
	})
	t.Cleanup(restore)

	if err := Move(src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err = %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "frames" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestMove_FailureLeavesSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	if err := os.WriteFile(src, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	restore := SetRenameForTests(func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrPermission}
	})
	t.Cleanup(restore)

	err := Move(src, filepath.Join(dir, "dst.jpg"))
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if strings.Contains(err.Error(), "cross-device") {
		t.Fatalf("unexpected copy fallback: %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source should remain: %v", err)
	}
}
