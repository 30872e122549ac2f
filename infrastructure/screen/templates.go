// Package screen provides window capture and template search for the
// bot. All coordinates at this boundary are client-area relative; the
// frame translates them to screen space for capture.
package screen

import (
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
)

// TemplateStore holds the decoded template images referenced by a
// resolution profile. Templates are loaded once at session start; a
// missing or undecodable file is a fatal configuration error.
type TemplateStore struct {
	images map[string]image.Image
}

// LoadTemplates decodes every template in the mapping (name to filename)
// from the given filesystem root.
func LoadTemplates(fsys fs.FS, mapping map[string]string) (*TemplateStore, error) {
	store := &TemplateStore{images: make(map[string]image.Image, len(mapping))}

	for name, file := range mapping {
		f, err := fsys.Open(file)
		if err != nil {
			return nil, fmt.Errorf("template %q: failed to open %s: %w", name, file, err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("template %q: failed to decode %s: %w", name, file, err)
		}
		store.images[name] = img
	}

	return store, nil
}

// NewTemplateStore builds a store from already-decoded images. Used by
// tests with synthetic templates.
func NewTemplateStore(images map[string]image.Image) *TemplateStore {
	return &TemplateStore{images: images}
}

// Get returns a template by name. An unknown name is a programming or
// configuration error, not a runtime condition.
func (s *TemplateStore) Get(name string) (image.Image, error) {
	img, ok := s.images[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	return img, nil
}
