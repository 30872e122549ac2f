// Package artifact holds the static artifact reference data and the
// post-prestige upgrade rotation built from it.
package artifact

import "sync"

// Descriptor describes a single artifact. Static reference data, never
// mutated at runtime.
type Descriptor struct {
	// Name is the unique artifact identifier, e.g. "book_of_shadows".
	Name string

	// Tier is the tier label the artifact belongs to, e.g. "S".
	Tier string

	// Template is the filename of the icon template used to locate the
	// artifact in the scrollable artifacts panel.
	Template string

	// MaxLevel marks artifacts with a level cap. Capped artifacts are
	// excluded from upgrade rotations since spending on them is wasted
	// once capped.
	MaxLevel bool
}

// Catalog is the registry of known artifacts. Registration order is
// preserved; the upgrade rotation relies on discovery order when
// shuffling is disabled.
type Catalog struct {
	order []string
	byName map[string]*Descriptor
	mu sync.RWMutex
}

// NewCatalog creates an empty artifact catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[string]*Descriptor),
	}
}

// Register adds a descriptor to the catalog. A descriptor with an
// existing name replaces the old one in place, keeping its position.
func (c *Catalog) Register(d *Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[d.Name]; !exists {
		c.order = append(c.order, d.Name)
	}
	c.byName[d.Name] = d
}

// Get retrieves a descriptor by name. Returns nil if not found.
func (c *Catalog) Get(name string) *Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byName[name]
}

// All returns all descriptors in registration order.
func (c *Catalog) All() []*Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Descriptor, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// Tiers returns the distinct tier labels present in the catalog, in
// first-seen order.
func (c *Catalog) Tiers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var tiers []string
	for _, name := range c.order {
		t := c.byName[name].Tier
		if !seen[t] {
			seen[t] = true
			tiers = append(tiers, t)
		}
	}
	return tiers
}

// Count returns the number of registered artifacts.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
