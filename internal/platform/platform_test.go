package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehluchkiv/modsplit/internal/module"
)

func TestDefault_LoadsIntoCatalog(t *testing.T) {
	mods := Default()
	require.NotEmpty(t, mods)

	cat, err := module.Load(mods, nil)
	require.NoError(t, err)

	// Every requires edge of the embedded platform stays inside the platform.
	for _, id := range cat.IDs() {
		reqs, err := cat.RequiresOf(id)
		require.NoError(t, err)
		for _, r := range reqs {
			assert.True(t, cat.Contains(r), "%s requires missing %s", id, r)
		}
	}

	assert.Contains(t, cat.ResolveKeyword(module.AllDefault), module.ID("java.base"))
	assert.NotContains(t, cat.ResolveKeyword(module.AllDefault), module.ID("java.annotations.common"))
	assert.Contains(t, cat.ResolveKeyword(module.AllSystem), module.ID("java.annotations.common"))
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
modules:
  - name: s1
    default_root: true
    exports: [p]
  - name: s2
    requires: [s1]
`), 0o644))

	mods, err := Load(path)
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, module.ID("s1"), mods[0].Name)
	assert.True(t, mods[0].DefaultRoot)
	assert.Equal(t, module.System, mods[1].Origin)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modules:\n  - name: only\n"), 0o644))
	t.Setenv(EnvPath, path)

	mods, err := Load("")
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, module.ID("only"), mods[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecode_InvalidEntry(t *testing.T) {
	_, err := Decode(strings.NewReader("modules:\n  - name: ok\n  - name: ALL-SYSTEM\n"), "p.yaml")
	var ide *module.InvalidDescriptorError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, "p.yaml[1]", ide.Source)
}
