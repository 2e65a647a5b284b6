package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"photosorter/internal/organizer"
)

// CheckOutputRoot verifies the output root can receive files. A missing root
// passes when its nearest existing ancestor is writable, since a run creates
// it. A root locked by another run fails.
func CheckOutputRoot(path string) Result {
	const name = "Output root"

	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Name: name, Detail: "not set (use --output or paths.output_dir)"}
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		res := CheckCreatable(name, path)
		if res.Passed {
			res.Detail = fmt.Sprintf("%s (will be created)", path)
		}
		return res
	}
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	if busy, err := lockHeld(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: lock: %v)", path, err)}
	} else if busy {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: another sort is running)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckInputFolder verifies that a folder exists and can be listed.
func CheckInputFolder(path string) Result {
	name := "Input " + filepath.Base(path)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	if err := unix.Access(path, unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: files cannot be moved out: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatable verifies that path exists as a writable directory or can be
// created below its nearest existing ancestor.
func CheckCreatable(name, path string) Result {
	dir := path
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, dir)}
			}
			if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s not writable: %v)", path, dir, err)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", path)}
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		dir = parent
	}
}

func lockHeld(root string) (bool, error) {
	lockPath := filepath.Join(root, organizer.LockFileName)
	if _, err := os.Stat(lockPath); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return false, err
	}
	if ok {
		_ = fl.Unlock()
	}
	return !ok, nil
}
