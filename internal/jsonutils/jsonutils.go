package jsonutils

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFile marshals data into pretty JSON and writes it at path.
func WriteFile(path string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0600)
}

// WriteFileIn marshals data into pretty JSON and writes it to filename inside dir.
func WriteFileIn(dir, filename string, data any) error {
	return WriteFile(filepath.Join(dir, filename), data)
}

// LoadFromFS loads a JSON file from the filesystem, instantiates and unmarshals it into T.
func LoadFromFS[T any](fsys fs.ReadFileFS, path string) (T, error) {
	var v T

	f, err := fsys.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err = json.Unmarshal(f, &v); err != nil {
		return v, fmt.Errorf("failed to unmarshal JSON at path %s: %w", path, err)
	}

	return v, nil
}

// LoadFile loads a JSON file from the OS filesystem and unmarshals it into T.
func LoadFile[T any](path string) (T, error) {
	return LoadFromFS[T](os.DirFS(filepath.Dir(path)).(fs.ReadFileFS), filepath.Base(path))
}
