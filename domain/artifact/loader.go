package artifact

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlArtifactDefinition is the YAML structure for artifact definitions.
type yamlArtifactDefinition struct {
	Tier      string         `yaml:"tier"`
	Artifacts []yamlArtifact `yaml:"artifacts"`
}

type yamlArtifact struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
	MaxLevel bool   `yaml:"max_level"`
}

// Loader populates a catalog from artifact definition files.
type Loader struct {
	catalog *Catalog
}

// NewLoader creates a loader that populates the given catalog.
func NewLoader(catalog *Catalog) *Loader {
	return &Loader{catalog: catalog}
}

// LoadFromFS loads artifact definitions from an embedded or real
// filesystem. It expects YAML files in an "artifacts" subdirectory, one
// file per tier.
func (l *Loader) LoadFromFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, "artifacts")
	if err != nil {
		return fmt.Errorf("failed to read artifacts directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		if err := l.loadFile(fsys, "artifacts/"+entry.Name()); err != nil {
			return err
		}
	}

	return nil
}

func (l *Loader) loadFile(fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read artifact file %s: %w", path, err)
	}

	var def yamlArtifactDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("failed to parse artifact file %s: %w", path, err)
	}

	for _, ya := range def.Artifacts {
		l.catalog.Register(&Descriptor{
			Name:     ya.Name,
			Tier:     def.Tier,
			Template: ya.Template,
			MaxLevel: ya.MaxLevel,
		})
	}

	return nil
}
