package screen

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/kbinani/screenshot"
)

// Frame locates the emulator client area on the physical screen. Rect is
// the emulator window rectangle in screen coordinates; YPadding is the
// title-bar height excluded from the client area.
type Frame struct {
	Rect     image.Rectangle
	YPadding int
}

// ClientRect returns the client-area rectangle in screen coordinates.
func (f Frame) ClientRect() image.Rectangle {
	return image.Rect(f.Rect.Min.X, f.Rect.Min.Y+f.YPadding, f.Rect.Max.X, f.Rect.Max.Y)
}

// ClientSize returns the client-area dimensions.
func (f Frame) ClientSize() image.Point {
	r := f.ClientRect()
	return image.Pt(r.Dx(), r.Dy())
}

// Grabber captures the emulator client area and searches it for
// templates. Pure query; it never mutates game state.
type Grabber struct {
	frame     Frame
	templates *TemplateStore
	log       *slog.Logger

	capture   func(image.Rectangle) (*image.RGBA, error)
	testImage image.Image
}

// NewGrabber creates a grabber bound to a window frame.
func NewGrabber(frame Frame, templates *TemplateStore, log *slog.Logger) *Grabber {
	return &Grabber{
		frame:     frame,
		templates: templates,
		log:       log,
		capture:   screenshot.CaptureRect,
	}
}

// UseImage injects a fixed image served by every subsequent capture.
// Used by tests to script what the bot sees.
func (g *Grabber) UseImage(img image.Image) {
	g.testImage = img
}

// Snapshot captures the full client area. The returned image uses
// client coordinates with origin (0,0).
func (g *Grabber) Snapshot() (image.Image, error) {
	if g.testImage != nil {
		return g.testImage, nil
	}

	img, err := g.capture(g.frame.ClientRect())
	if err != nil {
		return nil, fmt.Errorf("failed to capture window: %w", err)
	}
	return img, nil
}

// SnapshotRegion captures a client-area region, typically for OCR.
func (g *Grabber) SnapshotRegion(region image.Rectangle) (image.Image, error) {
	if g.testImage != nil {
		return cropImage(g.testImage, region), nil
	}

	screenRegion := region.Add(g.frame.ClientRect().Min)
	img, err := g.capture(screenRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region %v: %w", region, err)
	}
	return img, nil
}

// Search looks for a named template in the current screen contents.
// When region is non-nil the scan is restricted to it. Precision in
// (0,1] is the required fraction of matching pixels. A miss is a normal
// outcome; the error covers broken input only (unknown template,
// capture failure).
func (g *Grabber) Search(name string, region *image.Rectangle, precision float64) (image.Point, bool, error) {
	img, err := g.Snapshot()
	if err != nil {
		return image.Point{}, false, err
	}
	return g.searchIn(img, name, region, precision)
}

// SearchAny searches for several templates in one capture and returns
// the name and position of the first hit, in the order given.
func (g *Grabber) SearchAny(names []string, region *image.Rectangle, precision float64) (string, image.Point, bool, error) {
	img, err := g.Snapshot()
	if err != nil {
		return "", image.Point{}, false, err
	}

	for _, name := range names {
		pt, found, err := g.searchIn(img, name, region, precision)
		if err != nil {
			return "", image.Point{}, false, err
		}
		if found {
			return name, pt, true, nil
		}
	}
	return "", image.Point{}, false, nil
}

func (g *Grabber) searchIn(img image.Image, name string, region *image.Rectangle, precision float64) (image.Point, bool, error) {
	tpl, err := g.templates.Get(name)
	if err != nil {
		return image.Point{}, false, err
	}

	area := img.Bounds()
	if region != nil {
		area = *region
	}

	pt, found := matchTemplate(img, tpl, area, precision)
	if found {
		g.log.Debug("template found", "template", name, "at", pt)
	}
	return pt, found, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// cropImage extracts a region, copying when the source does not support
// sub-imaging.
func cropImage(img image.Image, region image.Rectangle) image.Image {
	if si, ok := img.(subImager); ok {
		return si.SubImage(region)
	}

	out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	for y := 0; y < region.Dy(); y++ {
		for x := 0; x < region.Dx(); x++ {
			out.Set(x, y, img.At(region.Min.X+x, region.Min.Y+y))
		}
	}
	return out
}
