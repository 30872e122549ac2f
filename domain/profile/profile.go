// Package profile holds per-resolution screen geometry: named click
// points, OCR regions and template image references. A session selects
// one profile at startup based on the emulator window size.
package profile

import (
	"fmt"
	"image"
	"sync"
)

// Profile is the static geometry for one emulator resolution. All
// coordinates are relative to the emulator client area; window translation
// happens in the input/screen layers.
type Profile struct {
	// Resolution labels the profile, e.g. "480x800".
	Resolution string

	// YPadding is the emulator title-bar height to skip when translating
	// client coordinates into window coordinates.
	YPadding int

	points    map[string]image.Point
	regions   map[string]image.Rectangle
	grids     map[string][]image.Point
	templates map[string]string
}

// NewProfile builds an empty profile. Production code loads profiles
// through the Loader; this constructor serves programmatic setup.
func NewProfile(resolution string, yPadding int) *Profile {
	return &Profile{
		Resolution: resolution,
		YPadding:   yPadding,
		points:     make(map[string]image.Point),
		regions:    make(map[string]image.Rectangle),
		grids:      make(map[string][]image.Point),
		templates:  make(map[string]string),
	}
}

// SetPoint registers a named click point.
func (p *Profile) SetPoint(name string, pt image.Point) {
	p.points[name] = pt
}

// SetRegion registers a named capture region.
func (p *Profile) SetRegion(name string, r image.Rectangle) {
	p.regions[name] = r
}

// SetGrid registers a named point list.
func (p *Profile) SetGrid(name string, pts []image.Point) {
	p.grids[name] = pts
}

// SetTemplate binds a template name to an image filename.
func (p *Profile) SetTemplate(name, file string) {
	p.templates[name] = file
}

// Point returns a named click point.
func (p *Profile) Point(name string) (image.Point, bool) {
	pt, ok := p.points[name]
	return pt, ok
}

// Region returns a named capture region.
func (p *Profile) Region(name string) (image.Rectangle, bool) {
	r, ok := p.regions[name]
	return r, ok
}

// Grid returns a named list of points, e.g. the fairy tap grid.
func (p *Profile) Grid(name string) ([]image.Point, bool) {
	g, ok := p.grids[name]
	return g, ok
}

// Template returns the image filename bound to a template name.
func (p *Profile) Template(name string) (string, bool) {
	t, ok := p.templates[name]
	return t, ok
}

// Templates returns the full template name-to-filename mapping, used to
// load the template store at session start.
func (p *Profile) Templates() map[string]string {
	out := make(map[string]string, len(p.templates))
	for name, file := range p.templates {
		out[name] = file
	}
	return out
}

// Validate checks that every required name resolves. A missing entry is
// a configuration error and fatal at session start, not at use time.
func (p *Profile) Validate(points, regions, templates []string) error {
	for _, name := range points {
		if _, ok := p.points[name]; !ok {
			return fmt.Errorf("profile %s: missing point %q", p.Resolution, name)
		}
	}
	for _, name := range regions {
		if _, ok := p.regions[name]; !ok {
			return fmt.Errorf("profile %s: missing region %q", p.Resolution, name)
		}
	}
	for _, name := range templates {
		if _, ok := p.templates[name]; !ok {
			return fmt.Errorf("profile %s: missing template %q", p.Resolution, name)
		}
	}
	return nil
}

// Registry manages loaded profiles keyed by resolution label.
type Registry struct {
	profiles map[string]*Profile
	mu       sync.RWMutex
}

// NewRegistry creates an empty profile registry.
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[string]*Profile),
	}
}

// Register adds a profile to the registry, replacing any existing profile
// with the same resolution label.
func (r *Registry) Register(p *Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.Resolution] = p
}

// Get retrieves a profile by resolution label. Returns nil if not found.
func (r *Registry) Get(resolution string) *Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[resolution]
}

// List returns all registered resolution labels.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := make([]string, 0, len(r.profiles))
	for label := range r.profiles {
		labels = append(labels, label)
	}
	return labels
}
