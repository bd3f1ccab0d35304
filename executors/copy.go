package executors

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func copyPath(source, dest string) error {
	srcInfo, err := os.Lstat(source)
	if err != nil {
		return fmt.Errorf("source does not exist: %s", source)
	}

	switch {
	case srcInfo.Mode()&os.ModeSymlink != 0:
		return copySymlink(source, dest)
	case srcInfo.IsDir():
		return copyDir(source, dest)
	default:
		return copyFile(source, dest)
	}
}

func copyFile(source, dest string) (err error) {
	srcFile, err := os.Open(source)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	destFile, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(destFile, srcFile); err != nil {
		return err
	}
	return destFile.Chmod(srcInfo.Mode().Perm())
}

func copyDir(source, dest string) error {
	srcInfo, err := os.Stat(source)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dest, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := copyPath(filepath.Join(source, entry.Name()), filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copySymlink(source, dest string) error {
	linkTarget, err := os.Readlink(source)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	_ = os.Remove(dest)
	return os.Symlink(linkTarget, dest)
}
