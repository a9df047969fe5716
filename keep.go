package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

const defaultKeepDir = "keep"

var (
	errKeep         = errors.New("failed to keep image")
	errCollision    = errors.New("destination already exists")
	errNotDirectory = errors.New("keep path is not a directory")
)

// KeepDir is the directory kept images are moved into. A relative path is
// resolved against the working directory at the time of each keep.
type KeepDir struct {
	Path string
}

// NewKeepDir returns a KeepDir for path, defaulting to "keep".
func NewKeepDir(path string) *KeepDir {
	if path == "" {
		path = defaultKeepDir
	}
	return &KeepDir{Path: path}
}

// Ensure creates the directory. An existing directory is not an error.
func (k *KeepDir) Ensure() error {
	err := os.Mkdir(k.Path, 0o755)
	if err == nil {
		slog.Info("Created keep directory", slog.String("path", k.Path))
		return nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return err
	}

	info, errStat := os.Stat(k.Path)
	if errStat != nil {
		return errStat
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", errNotDirectory, k.Path)
	}
	return nil
}

// Destination returns where path would land inside the keep directory.
func (k *KeepDir) Destination(path ImagePath) string {
	return filepath.Join(k.Path, path.Name())
}

// Relocate moves a regular file into the keep directory, or extracts an
// archive entry into it. Nothing is overwritten: an existing destination is
// reported as errCollision and the source is left untouched.
func (k *KeepDir) Relocate(path ImagePath) (string, error) {
	dest := k.Destination(path)
	if _, err := os.Lstat(dest); err == nil {
		return "", fmt.Errorf("%w: %s", errCollision, dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if path.IsArchiveEntry() {
		return dest, extractEntry(path, dest)
	}
	return dest, moveFile(path.Path, dest)
}

func moveFile(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	slog.Debug("Cross-device move, copying", slog.String("src", src), slog.String("dest", dest))
	if err := copyFile(src, dest); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		// Leave exactly one copy behind.
		return errors.Join(err, os.Remove(dest))
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	return writeExclusive(dest, info.Mode().Perm(), in)
}

func extractEntry(path ImagePath, dest string) error {
	rc, err := openArchiveEntry(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	return writeExclusive(dest, 0o644, rc)
}

// writeExclusive creates dest, failing if it exists, and fills it from r.
// A partially written file is removed.
func writeExclusive(dest string, perm fs.FileMode, r io.Reader) error {
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", errCollision, dest)
		}
		return err
	}

	_, errCopy := io.Copy(out, r)
	errSync := out.Sync()
	errClose := out.Close()
	if err := errors.Join(errCopy, errSync, errClose); err != nil {
		return errors.Join(err, os.Remove(dest))
	}
	return nil
}
