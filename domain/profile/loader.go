package profile

import (
	"fmt"
	"image"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlProfile is the YAML structure for a resolution profile.
type yamlProfile struct {
	Resolution string                `yaml:"resolution"`
	YPadding   int                   `yaml:"y_padding"`
	Points     map[string]yamlPoint  `yaml:"points"`
	Regions    map[string]yamlRegion `yaml:"regions"`
	Grids      map[string][]yamlPoint `yaml:"grids"`
	Templates  map[string]string     `yaml:"templates"`
}

type yamlPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type yamlRegion struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Loader populates a registry from profile definition files.
type Loader struct {
	registry *Registry
}

// NewLoader creates a loader that populates the given registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// LoadFromFS loads profile definitions from an embedded or real
// filesystem. It expects YAML files in a "profiles" subdirectory, one
// file per resolution.
func (l *Loader) LoadFromFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, "profiles")
	if err != nil {
		return fmt.Errorf("failed to read profiles directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		if err := l.loadFile(fsys, "profiles/"+entry.Name()); err != nil {
			return err
		}
	}

	return nil
}

func (l *Loader) loadFile(fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	var yp yamlProfile
	if err := yaml.Unmarshal(data, &yp); err != nil {
		return fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}
	if yp.Resolution == "" {
		return fmt.Errorf("profile file %s: missing resolution label", path)
	}

	l.registry.Register(convertYAMLProfile(&yp))
	return nil
}

func convertYAMLProfile(yp *yamlProfile) *Profile {
	p := &Profile{
		Resolution: yp.Resolution,
		YPadding:   yp.YPadding,
		points:     make(map[string]image.Point, len(yp.Points)),
		regions:    make(map[string]image.Rectangle, len(yp.Regions)),
		grids:      make(map[string][]image.Point, len(yp.Grids)),
		templates:  make(map[string]string, len(yp.Templates)),
	}

	for name, pt := range yp.Points {
		p.points[name] = image.Pt(pt.X, pt.Y)
	}
	for name, r := range yp.Regions {
		p.regions[name] = image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
	}
	for name, grid := range yp.Grids {
		pts := make([]image.Point, len(grid))
		for i, pt := range grid {
			pts[i] = image.Pt(pt.X, pt.Y)
		}
		p.grids[name] = pts
	}
	for name, file := range yp.Templates {
		p.templates[name] = file
	}

	return p
}
