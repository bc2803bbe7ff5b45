package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Loader decodes one scene file format.
type Loader interface {
	Decode(data []byte) (*Description, error)
}

type yamlLoader struct{}

func (yamlLoader) Decode(data []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

type tomlLoader struct{}

func (tomlLoader) Decode(data []byte) (*Description, error) {
	var d Description
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

var loaders = map[string]Loader{
	".yaml": yamlLoader{},
	".yml":  yamlLoader{},
	".toml": tomlLoader{},
}

// LoaderFor returns the loader registered for the extension of path.
func LoaderFor(path string) (Loader, error) {
	l, ok := loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return l, nil
}

// LoadDescription reads and validates a scene file.
func LoadDescription(path string) (*Description, error) {
	l, err := LoaderFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	d, err := l.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return d, nil
}

// Load reads a scene file and builds it. An empty path yields the default scene.
func Load(path string) (*Scene, error) {
	if path == "" {
		return Build(DefaultDescription())
	}
	d, err := LoadDescription(path)
	if err != nil {
		return nil, err
	}
	return Build(d)
}
