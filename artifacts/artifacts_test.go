package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Env   string `json:"env"`
	Count int    `json:"count"`
}

func Test_Dir_Paths(t *testing.T) {
	t.Parallel()

	d := NewDir("/tmp/artifacts", "staging")

	assert.Equal(t, "/tmp/artifacts/staging", d.Path())
	assert.Equal(t, "staging", d.EnvKey())
}

func Test_Dir_Create(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d := NewDir(root, "staging")

	require.NoError(t, d.Create())
	assert.FileExists(t, filepath.Join(root, "staging", ".gitkeep"))

	// Creating it again is a no-op.
	require.NoError(t, d.Create())
}

func Test_Dir_Save(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d := NewDir(root, "staging")

	path, err := d.Save("check", report{Env: "staging", Count: 2})
	require.NoError(t, err)

	assert.Equal(t, d.Path(), filepath.Dir(path))

	base := filepath.Base(path)
	require.True(t, strings.HasSuffix(base, "-staging-check.json"), base)
	_, err = ksuid.Parse(strings.TrimSuffix(base, "-staging-check.json"))
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"env":"staging","count":2}`, string(b))
}

func Test_Dir_Save_RequiresName(t *testing.T) {
	t.Parallel()

	_, err := NewDir(t.TempDir(), "staging").Save("", report{})
	require.EqualError(t, err, "artifact name is required")
}

func Test_Dir_ListAndLatest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d := NewDir(root, "staging")

	_, err := d.Latest("check")
	require.ErrorIs(t, err, ErrNotFound)

	first, err := d.Save("check", report{Count: 1})
	require.NoError(t, err)
	second, err := d.Save("check", report{Count: 2})
	require.NoError(t, err)

	// Artifacts with a different name, or whose name only ends with the one looked up, are ignored.
	_, err = d.Save("balances", report{Count: 3})
	require.NoError(t, err)
	_, err = d.Save("pre-check", report{Count: 4})
	require.NoError(t, err)

	got, err := d.List("check")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first, second}, got)

	latest, err := d.Latest("check")
	require.NoError(t, err)
	assert.Equal(t, got[len(got)-1], latest)
}

func Test_Load(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d := NewDir(root, "staging")

	_, err := Load[report](d, "check")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = d.Save("check", report{Env: "staging", Count: 7})
	require.NoError(t, err)

	got, err := Load[report](d, "check")
	require.NoError(t, err)
	assert.Equal(t, report{Env: "staging", Count: 7}, got)
}
