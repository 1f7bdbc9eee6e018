// Package artifacts stores the reports produced by the CLI on disk.
package artifacts

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/segmentio/ksuid"

	"github.com/smartcontractkit/interchain-infra/internal/fileutils"
	"github.com/smartcontractkit/interchain-infra/internal/jsonutils"
)

// JSONExt is the extension of every artifact file.
const JSONExt = "json"

// ErrNotFound is returned when no artifact matches a lookup.
var ErrNotFound = errors.New("artifact not found")

// Dir is the artifacts directory of a single environment, rooted at <root>/<envKey>.
//
// Artifact files are named <ksuid>-<envKey>-<name>.json. KSUIDs sort by their creation second, so
// the lexical order of the files follows the order they were saved in.
type Dir struct {
	root   string
	envKey string
}

// NewDir returns the artifacts directory for envKey under root. Nothing is created until
// [Dir.Create] or [Dir.Save] is called.
func NewDir(root, envKey string) *Dir {
	return &Dir{root: root, envKey: envKey}
}

// Path returns the path of the directory.
func (d *Dir) Path() string {
	return filepath.Join(d.root, d.envKey)
}

// EnvKey returns the environment the directory belongs to.
func (d *Dir) EnvKey() string {
	return d.envKey
}

// Create creates the directory, with a .gitkeep file, if it does not exist yet.
func (d *Dir) Create() error {
	exists, err := fileutils.Exists(d.Path())
	if err != nil || exists {
		return err
	}

	return fileutils.MkdirAllGitKeep(d.Path())
}

// Save writes v as JSON to a new artifact called name and returns the path of the file.
func (d *Dir) Save(name string, v any) (string, error) {
	if name == "" {
		return "", errors.New("artifact name is required")
	}

	if err := d.Create(); err != nil {
		return "", fmt.Errorf("failed to create artifacts dir %s: %w", d.Path(), err)
	}

	filename := fmt.Sprintf("%s-%s-%s.%s", ksuid.New().String(), d.envKey, name, JSONExt)
	path := filepath.Join(d.Path(), filename)

	if err := jsonutils.WriteFile(path, v); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", filename, err)
	}

	return path, nil
}

// List returns the paths of every artifact called name, oldest first.
func (d *Dir) List(name string) ([]string, error) {
	suffix := fmt.Sprintf("-%s-%s.%s", d.envKey, name, JSONExt)

	matches, err := filepath.Glob(filepath.Join(d.Path(), "*"+suffix))
	if err != nil {
		return nil, err
	}

	// Other artifact names may end with -<name>, so only files made of a ksuid and the suffix match.
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		id := strings.TrimSuffix(filepath.Base(m), suffix)
		if _, err := ksuid.Parse(id); err == nil {
			paths = append(paths, m)
		}
	}
	slices.Sort(paths)

	return paths, nil
}

// Latest returns the path of the most recently saved artifact called name.
func (d *Dir) Latest(name string) (string, error) {
	paths, err := d.List(name)
	if err != nil {
		return "", err
	}

	if len(paths) == 0 {
		return "", fmt.Errorf("%w: %s in %s", ErrNotFound, name, d.Path())
	}

	return paths[len(paths)-1], nil
}

// Load unmarshals the most recently saved artifact called name into T.
func Load[T any](d *Dir, name string) (T, error) {
	path, err := d.Latest(name)
	if err != nil {
		var zero T
		return zero, err
	}

	return jsonutils.LoadFile[T](path)
}
