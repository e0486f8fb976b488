package classindex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehluchkiv/modsplit/internal/classfiletest"
	"github.com/olehluchkiv/modsplit/internal/module"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// ParseClass
// ---------------------------------------------------------------------------

func TestParseClass(t *testing.T) {
	data := classfiletest.Build("p.q.Main",
		"java.util.List",
		"[Ljava/lang/String;",
		"[[I",
		"p.q.Main",
	)

	cf, err := ParseClass(data)
	require.NoError(t, err)
	assert.Equal(t, "p.q.Main", cf.Name)
	assert.Equal(t, "java.lang.Object", cf.Super)
	assert.Empty(t, cf.Interfaces)
	// Self references and primitive arrays are dropped; arrays are unwrapped.
	assert.Equal(t, []string{"java.lang.Object", "java.lang.String", "java.util.List"}, cf.Refs)
}

func TestParseClass_Malformed(t *testing.T) {
	good := classfiletest.Build("p.A", "p.B")

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "unexpected end"},
		{"bad magic", append([]byte{0xDE, 0xAD, 0xBE, 0xEF}, good[4:]...), "bad magic"},
		{"truncated pool", good[:14], "unexpected end"},
		{"truncated header", good[:len(good)-12], "unexpected end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClass(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseClass_UnknownTag(t *testing.T) {
	data := classfiletest.Build("p.A")
	// First pool entry starts right after magic, versions and count.
	data[10] = 99
	_, err := ParseClass(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown constant pool tag 99")
}

func TestPackageOf(t *testing.T) {
	assert.Equal(t, "java.lang", PackageOf("java.lang.Object"))
	assert.Equal(t, "", PackageOf("Main"))
}

// ---------------------------------------------------------------------------
// Scan
// ---------------------------------------------------------------------------

func TestScan_UnnamedAndNamedUnits(t *testing.T) {
	root := t.TempDir()
	classfiletest.Write(t, root, "p.Patch", "javax.annotation.Resource")

	m1 := filepath.Join(root, "mods", "m1")
	classfiletest.WriteModule(t, m1, "name: m1\nrequires: [m2]\nexports: [p]\n")
	classfiletest.Write(t, m1, "p.A", "q.B")
	classfiletest.Write(t, m1, "p.internal.Impl")
	require.NoError(t, os.WriteFile(filepath.Join(m1, "module-info.class"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(m1, "README"), []byte("ignored"), 0o644))

	m2 := filepath.Join(root, "mods", "m2")
	classfiletest.WriteModule(t, m2, "name: m2\nautomatic: true\n")
	classfiletest.Write(t, m2, "q.B")

	idx, err := Scan(context.Background(), []string{root}, Options{}, testLogger())
	require.NoError(t, err)
	require.NoError(t, idx.Err())

	assert.Equal(t, 4, idx.Len())
	assert.True(t, idx.HasUnnamed())
	assert.Equal(t, []string{"p"}, idx.Packages(module.Unnamed))
	assert.Equal(t, []string{"p", "p.internal"}, idx.Packages("m1"))
	assert.Equal(t, []module.ID{"m2"}, idx.Owners("q.B"))
	assert.True(t, idx.HasPackage("p.internal"))
	assert.False(t, idx.HasPackage("javax.annotation"), "referenced packages are not present")

	mods := idx.Modules()
	require.Len(t, mods, 2)
	assert.Equal(t, module.ID("m1"), mods[0].Name)
	assert.Equal(t, module.Analyzed, mods[0].Origin)
	assert.Equal(t, []string{"p", "p.internal"}, mods[0].Packages)
	assert.Equal(t, []string{"p"}, mods[0].Exports)
	// Automatic modules export every package they contain.
	assert.Equal(t, []string{"q"}, mods[1].Exports)
}

func TestScan_EntriesAreOrdered(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	classfiletest.Write(t, a, "z.Last")
	classfiletest.Write(t, b, "a.First")
	classfiletest.WriteModule(t, filepath.Join(b, "m"), "name: m\n")
	classfiletest.Write(t, filepath.Join(b, "m"), "m.Only")

	idx, err := Scan(context.Background(), []string{a, b}, Options{Concurrency: 2}, testLogger())
	require.NoError(t, err)

	var names []string
	for _, e := range idx.Entries() {
		names = append(names, string(e.Module)+"/"+e.Name)
	}
	assert.Equal(t, []string{"m/m.Only", "unnamed/a.First", "unnamed/z.Last"}, names)
}

func TestScan_MissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := Scan(context.Background(), []string{missing}, Options{}, testLogger())
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, missing, ioErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestScan_FileIsNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "x.class")
	require.NoError(t, os.WriteFile(file, classfiletest.Build("x"), 0o644))

	_, err := Scan(context.Background(), []string{file}, Options{}, testLogger())
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Contains(t, err.Error(), "not a directory")
}

func TestScan_MalformedFilesAreAggregated(t *testing.T) {
	root := t.TempDir()
	classfiletest.Write(t, root, "p.Good")
	bad1 := filepath.Join(root, "p", "Bad.class")
	bad2 := filepath.Join(root, "p", "Worse.class")
	require.NoError(t, os.WriteFile(bad1, []byte{0xCA, 0xFE}, 0o644))
	require.NoError(t, os.WriteFile(bad2, []byte("not a class at all"), 0o644))

	idx, err := Scan(context.Background(), []string{root}, Options{}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Len())
	require.Len(t, idx.Malformed(), 2)
	assert.Equal(t, bad1, idx.Malformed()[0].Path)
	assert.Equal(t, bad2, idx.Malformed()[1].Path)

	var mce *MalformedClassError
	require.True(t, errors.As(idx.Err(), &mce))
}

func TestScan_DuplicateModuleAcrossRoots(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	classfiletest.WriteModule(t, a, "name: m1\n")
	classfiletest.WriteModule(t, b, "name: m1\n")

	_, err := Scan(context.Background(), []string{a, b}, Options{}, testLogger())
	var dup *module.DuplicateModuleError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, module.ID("m1"), dup.ID)
}

func TestScan_InvalidDescriptor(t *testing.T) {
	root := t.TempDir()
	classfiletest.WriteModule(t, root, "name: ALL-DEFAULT\n")

	_, err := Scan(context.Background(), []string{root}, Options{}, testLogger())
	var ide *module.InvalidDescriptorError
	require.True(t, errors.As(err, &ide))
}

func TestScan_Cancelled(t *testing.T) {
	root := t.TempDir()
	classfiletest.Write(t, root, "p.A")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, []string{root}, Options{}, testLogger())
	require.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

func TestDependencies(t *testing.T) {
	cat, err := module.Load([]module.Descriptor{
		{Name: "java.base", Exports: []string{"java.lang"}},
		{Name: "ann", Exports: []string{"javax.annotation"}},
		{Name: "unused", Exports: []string{"x"}},
	}, []module.Descriptor{{Name: "m1"}, {Name: "m2"}})
	require.NoError(t, err)

	idx := New([]Entry{
		{Name: "app.Main", Package: "app", Module: module.Unnamed, Refs: []string{"javax.annotation.Resource", "lib.Helper"}},
		{Name: "lib.Helper", Package: "lib", Module: "m1", Refs: []string{"java.lang.Object", "lib.Other"}},
		{Name: "lib.Other", Package: "lib", Module: "m1"},
	}, []module.Descriptor{{Name: "m1"}})

	assert.Equal(t, []module.ID{"ann", "java.base", "m1"}, idx.Dependencies(cat))
}

func TestDependencies_None(t *testing.T) {
	cat, err := module.Load([]module.Descriptor{{Name: "s", Exports: []string{"s.api"}}}, nil)
	require.NoError(t, err)

	idx := New([]Entry{
		{Name: "app.Main", Package: "app", Module: module.Unnamed, Refs: []string{"app.Util", "java.lang.Object"}},
		{Name: "app.Util", Package: "app", Module: module.Unnamed},
	}, nil)

	assert.Empty(t, idx.Dependencies(cat))
}
