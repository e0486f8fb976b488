package resolver

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehluchkiv/modsplit/internal/classindex"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestResolve_AbsoluteAndDeduplicated(t *testing.T) {
	tmp := t.TempDir()
	a := filepath.Join(tmp, "a")
	b := filepath.Join(tmp, "b")
	require.NoError(t, os.MkdirAll(a, 0o755))
	require.NoError(t, os.MkdirAll(b, 0o755))

	got, err := Resolve([]string{b, a, filepath.Join(b, "..", "b")}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, got)
}

func TestResolve_RelativeInput(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	require.NoError(t, os.MkdirAll("classes", 0o755))

	got, err := Resolve([]string{"classes"}, testLogger())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, filepath.IsAbs(got[0]))
	assert.Equal(t, "classes", filepath.Base(got[0]))
}

func TestResolve_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := Resolve([]string{missing}, testLogger())
	var ioErr *classindex.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, missing, ioErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestResolve_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "Main.class")
	require.NoError(t, os.WriteFile(file, []byte{0xCA, 0xFE, 0xBA, 0xBE}, 0o644))

	_, err := Resolve([]string{file}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestResolve_NoInputs(t *testing.T) {
	_, err := Resolve(nil, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no class directories")
}

func TestResolve_NestedInputsDropped(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "root")
	m1 := filepath.Join(root, "m1")
	other := filepath.Join(tmp, "other")
	require.NoError(t, os.MkdirAll(m1, 0o755))
	require.NoError(t, os.MkdirAll(other, 0o755))

	got, err := Resolve([]string{m1, other, root}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{other, root}, got)

	got, err = Resolve([]string{root, m1}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{root}, got)
}

func TestResolve_SharedPrefixIsNotNested(t *testing.T) {
	tmp := t.TempDir()
	m1 := filepath.Join(tmp, "m1")
	m10 := filepath.Join(tmp, "m10")
	require.NoError(t, os.MkdirAll(m1, 0o755))
	require.NoError(t, os.MkdirAll(m10, 0o755))

	got, err := Resolve([]string{m1, m10}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{m1, m10}, got)
}
