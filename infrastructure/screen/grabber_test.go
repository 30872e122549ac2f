package screen

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"testing"
)

// fill paints a solid rectangle onto img.
func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), c)
	return img
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
	grey = color.RGBA{R: 40, G: 40, B: 40, A: 255}
)

func testGrabber(t *testing.T, screen image.Image, templates map[string]image.Image) *Grabber {
	t.Helper()
	g := NewGrabber(Frame{Rect: image.Rect(0, 0, 480, 830), YPadding: 30},
		NewTemplateStore(templates), slog.New(slog.DiscardHandler))
	g.UseImage(screen)
	return g
}

func TestSearch_FindsTemplate(t *testing.T) {
	scr := solid(480, 800, grey)
	fill(scr, image.Rect(100, 200, 110, 210), red)

	g := testGrabber(t, scr, map[string]image.Image{
		"marker": solid(10, 10, red),
	})

	pt, found, err := g.Search("marker", nil, 0.9)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !found {
		t.Fatal("template not found")
	}
	if pt != image.Pt(100, 200) {
		t.Errorf("found at %v, want (100,200)", pt)
	}
}

func TestSearch_NotFoundIsNotAnError(t *testing.T) {
	g := testGrabber(t, solid(480, 800, grey), map[string]image.Image{
		"marker": solid(10, 10, red),
	})

	_, found, err := g.Search("marker", nil, 0.9)
	if err != nil {
		t.Fatalf("Search returned error on miss: %v", err)
	}
	if found {
		t.Error("template reported found on a blank screen")
	}
}

func TestSearch_UnknownTemplateIsFatal(t *testing.T) {
	g := testGrabber(t, solid(480, 800, grey), map[string]image.Image{})

	if _, _, err := g.Search("missing", nil, 0.9); err == nil {
		t.Error("unknown template should be an error")
	}
}

func TestSearch_RegionRestriction(t *testing.T) {
	scr := solid(480, 800, grey)
	fill(scr, image.Rect(100, 600, 110, 610), red)

	g := testGrabber(t, scr, map[string]image.Image{
		"marker": solid(10, 10, red),
	})

	top := image.Rect(0, 0, 480, 400)
	if _, found, _ := g.Search("marker", &top, 0.9); found {
		t.Error("template found outside the search region")
	}

	bottom := image.Rect(0, 400, 480, 800)
	if _, found, _ := g.Search("marker", &bottom, 0.9); !found {
		t.Error("template not found inside the search region")
	}
}

func TestSearch_PrecisionToleratesNoise(t *testing.T) {
	scr := solid(480, 800, grey)
	fill(scr, image.Rect(50, 50, 60, 60), red)
	// Corrupt a few pixels of the on-screen instance.
	fill(scr, image.Rect(50, 50, 52, 51), blue)

	g := testGrabber(t, scr, map[string]image.Image{
		"marker": solid(10, 10, red),
	})

	if _, found, _ := g.Search("marker", nil, 1.0); found {
		t.Error("exact-precision search should miss a noisy instance")
	}
	if _, found, _ := g.Search("marker", nil, 0.9); !found {
		t.Error("0.9-precision search should absorb 2% noisy pixels")
	}
}

func TestSearchAny_FirstMatchWins(t *testing.T) {
	scr := solid(480, 800, grey)
	fill(scr, image.Rect(10, 10, 20, 20), red)
	fill(scr, image.Rect(100, 100, 110, 110), blue)

	g := testGrabber(t, scr, map[string]image.Image{
		"red_marker":  solid(10, 10, red),
		"blue_marker": solid(10, 10, blue),
	})

	name, _, found, err := g.SearchAny([]string{"blue_marker", "red_marker"}, nil, 0.9)
	if err != nil || !found {
		t.Fatalf("SearchAny = (%v, %v)", found, err)
	}
	if name != "blue_marker" {
		t.Errorf("first match = %s, want blue_marker (listed first)", name)
	}
}

func TestSnapshotRegion(t *testing.T) {
	scr := solid(480, 800, grey)
	fill(scr, image.Rect(214, 37, 268, 53), red)

	g := testGrabber(t, scr, nil)

	img, err := g.SnapshotRegion(image.Rect(214, 37, 268, 53))
	if err != nil {
		t.Fatalf("SnapshotRegion failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 54 || b.Dy() != 16 {
		t.Errorf("region size = %dx%d, want 54x16", b.Dx(), b.Dy())
	}
	r, _, _, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	if r>>8 != 255 {
		t.Errorf("region content wrong, top-left red channel = %d", r>>8)
	}
}

func TestFrame_ClientRect(t *testing.T) {
	f := Frame{Rect: image.Rect(100, 50, 580, 880), YPadding: 30}
	if got := f.ClientRect(); got != image.Rect(100, 80, 580, 880) {
		t.Errorf("ClientRect = %v", got)
	}
	if got := f.ClientSize(); got != image.Pt(480, 800) {
		t.Errorf("ClientSize = %v", got)
	}
}
