// Package classfiletest builds minimal class files for tests.
package classfiletest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Build returns a class file declaring class name (dotted) that extends
// java.lang.Object and references refs. A ref may be an array descriptor
// such as "[Ljava/lang/String;".
func Build(name string, refs ...string) []byte {
	var pool [][]byte
	classIndex := make(map[string]uint16)
	addClass := func(internal string) uint16 {
		if idx, ok := classIndex[internal]; ok {
			return idx
		}
		utf := []byte{1, 0, 0}
		binary.BigEndian.PutUint16(utf[1:], uint16(len(internal)))
		utf = append(utf, internal...)
		pool = append(pool, utf)
		nameIdx := uint16(len(pool))

		cls := []byte{7, 0, 0}
		binary.BigEndian.PutUint16(cls[1:], nameIdx)
		pool = append(pool, cls)
		classIndex[internal] = uint16(len(pool))
		return classIndex[internal]
	}

	this := addClass(internalName(name))
	super := addClass("java/lang/Object")
	for _, ref := range refs {
		if strings.HasPrefix(ref, "[") {
			addClass(ref)
			continue
		}
		addClass(internalName(ref))
	}
	// A long constant occupies two slots.
	pool = append(pool, []byte{5, 0, 0, 0, 0, 0, 0, 0, 42}, nil)

	out := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 61}
	out = binary.BigEndian.AppendUint16(out, uint16(len(pool)+1))
	for _, entry := range pool {
		out = append(out, entry...)
	}
	out = binary.BigEndian.AppendUint16(out, 0x0021) // public super
	out = binary.BigEndian.AppendUint16(out, this)
	out = binary.BigEndian.AppendUint16(out, super)
	out = binary.BigEndian.AppendUint16(out, 0) // interfaces
	out = binary.BigEndian.AppendUint16(out, 0) // fields
	out = binary.BigEndian.AppendUint16(out, 0) // methods
	out = binary.BigEndian.AppendUint16(out, 0) // attributes
	return out
}

// Write stores a class built by Build under root at the path implied by its name.
func Write(t testing.TB, root, name string, refs ...string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(internalName(name))+".class")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, Build(name, refs...), 0o644))
	return path
}

// WriteModule marks root as a named compilation unit.
func WriteModule(t testing.TB, root, descriptor string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "module.yaml"), []byte(descriptor), 0o644))
}

func internalName(dotted string) string {
	return strings.ReplaceAll(dotted, ".", "/")
}
