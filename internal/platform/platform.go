// Package platform supplies the system modules of the hosting platform.
// A small JDK-like module graph is embedded; a different platform can be
// described in a YAML file of the same shape.
package platform

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/olehluchkiv/modsplit/internal/module"
)

//go:embed jdk.yaml
var defaultPlatform []byte

// EnvPath names the environment variable that overrides the embedded platform.
const EnvPath = "MODSPLIT_PLATFORM"

type file struct {
	Modules []module.Descriptor `yaml:"modules"`
}

// Default returns the embedded platform modules.
func Default() []module.Descriptor {
	mods, err := Decode(bytes.NewReader(defaultPlatform), "embedded")
	if err != nil {
		panic(fmt.Sprintf("platform: embedded definition is invalid: %v", err))
	}
	return mods
}

// Load reads the platform modules from path. An empty path falls back to
// $MODSPLIT_PLATFORM and then to the embedded platform.
func Load(path string) ([]module.Descriptor, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening platform: %w", err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode parses a platform document. Entries follow the module.yaml rules.
func Decode(r io.Reader, source string) ([]module.Descriptor, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding platform %s: %w", source, err)
	}

	mods := doc.Modules
	for i := range mods {
		if err := mods[i].Validate(); err != nil {
			var ide *module.InvalidDescriptorError
			if errors.As(err, &ide) {
				ide.Source = fmt.Sprintf("%s[%d]", source, i)
			}
			return nil, err
		}
		mods[i].Origin = module.System
	}
	return mods, nil
}
