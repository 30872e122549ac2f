package ocr

import (
	"image"
	"image/color"
	"testing"
)

func TestPrepareStats_Upscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 10))
	out := PrepareStats(src)

	b := out.Bounds()
	if b.Dx() != 120 || b.Dy() != 30 {
		t.Errorf("PrepareStats size = %dx%d, want 120x30", b.Dx(), b.Dy())
	}
	if _, ok := out.(*image.Gray); !ok {
		t.Errorf("PrepareStats output type = %T, want *image.Gray", out)
	}
}

func TestPrepareStage_BinarizesAndDropsBlobs(t *testing.T) {
	// 54x16 stage counter: bright digit strokes plus a tiny bright
	// speck that must be removed.
	src := image.NewRGBA(image.Rect(0, 0, 54, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 54; x++ {
			src.Set(x, y, color.RGBA{R: 60, G: 60, B: 60, A: 255})
		}
	}
	// Digit-like bright bar, 6x12 source pixels = 30x60 after 5x
	// upscale, well above the blob floor.
	for y := 2; y < 14; y++ {
		for x := 10; x < 16; x++ {
			src.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	// Single-pixel speck = 5x5 after upscale, below the blob floor.
	src.Set(40, 8, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out := PrepareStage(src).(*image.Gray)

	b := out.Bounds()
	if b.Dx() != 270 || b.Dy() != 80 {
		t.Fatalf("PrepareStage size = %dx%d, want 270x80", b.Dx(), b.Dy())
	}

	// Background must be black after binarization at 230.
	if out.GrayAt(1, 1).Y != 0 {
		t.Error("background survived binarization")
	}
	// Center of the digit bar stays white.
	if out.GrayAt(13*5, 8*5).Y != 255 {
		t.Error("digit stroke did not survive preprocessing")
	}
	// The speck (around 202,42 after upscale) must be dropped. Bicubic
	// edges blur, so check the exact center.
	if out.GrayAt(202, 42).Y != 0 {
		t.Error("small blob survived preprocessing")
	}
}

func TestNoOp(t *testing.T) {
	var r Recognizer = NoOp{}
	text, err := r.Text(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil || text != "" {
		t.Errorf("NoOp.Text = (%q, %v), want empty", text, err)
	}
	digits, err := r.Digits(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil || digits != "" {
		t.Errorf("NoOp.Digits = (%q, %v), want empty", digits, err)
	}
}
