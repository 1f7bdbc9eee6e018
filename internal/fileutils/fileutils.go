package fileutils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFileGitKeep writes a .gitkeep file to the path.
func WriteFileGitKeep(path string) error {
	file, err := os.Create(filepath.Join(path, ".gitkeep"))
	if err != nil {
		return err
	}

	return file.Close()
}

// MkdirAllGitKeep creates a directory with a .gitkeep file. This will create all parent
// directories if they do not already exist.
func MkdirAllGitKeep(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return err
	}

	return WriteFileGitKeep(path)
}

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}
