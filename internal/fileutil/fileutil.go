package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sys/unix"
)

var rename = os.Rename

// SetRenameForTests swaps the rename primitive used by Move and returns a
// restore func.
func SetRenameForTests(fn func(oldpath, newpath string) error) func() {
	prev := rename
	if fn == nil {
		rename = os.Rename
	} else {
		rename = fn
	}
	return func() { rename = prev }
}

// Digest returns the sha256 content fingerprint of path. The handle is
// closed before returning.
func Digest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	d, err := digest.Canonical.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return d, nil
}

// SameContent reports whether a and b hold byte-identical content. Sizes are
// compared before hashing.
func SameContent(a, b string) (bool, error) {
	aInfo, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bInfo, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if aInfo.Size() != bInfo.Size() {
		return false, nil
	}
	aDigest, err := Digest(a)
	if err != nil {
		return false, err
	}
	bDigest, err := Digest(b)
	if err != nil {
		return false, err
	}
	return aDigest == bDigest, nil
}

// CopyFileVerified streams src to a new file at dst while fingerprinting both
// sides, and removes dst on a size or digest mismatch. dst must not exist.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcDigester := digest.Canonical.Digester()
	dstDigester := digest.Canonical.Digester()
	tee := io.TeeReader(in, srcDigester.Hash())
	multi := io.MultiWriter(out, dstDigester.Hash())

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if srcDigester.Digest() != dstDigester.Digest() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy digest mismatch: file corrupted during copy")
	}
	_ = os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
	return nil
}

// Move relocates src to dst. A same-volume rename is attempted first; when
// the paths live on different devices the file is copied with verification
// and the source removed. On failure src is left in place.
func Move(src, dst string) error {
	renameErr := rename(src, dst)
	if renameErr == nil {
		return nil
	}
	if !errors.Is(renameErr, unix.EXDEV) {
		return renameErr
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}
