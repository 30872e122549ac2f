package screen

import "image"

// colorTolerance is the summed RGB difference (16-bit channels) below
// which two pixels count as matching. Emulator rendering and capture
// both introduce slight color drift.
const colorTolerance uint32 = 3 * 0x2800

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// matchTemplate scans the search area of img for tpl and returns the
// top-left point of the first position whose pixel-mismatch fraction
// stays within 1-precision. A not-found result is a normal outcome,
// never an error.
func matchTemplate(img, tpl image.Image, area image.Rectangle, precision float64) (image.Point, bool) {
	tb := tpl.Bounds()
	if tb.Empty() {
		return image.Point{}, false
	}

	area = area.Intersect(img.Bounds())
	// The template must fit entirely inside the search area.
	maxX := area.Max.X - tb.Dx()
	maxY := area.Max.Y - tb.Dy()
	if maxX < area.Min.X-1 || maxY < area.Min.Y-1 {
		return image.Point{}, false
	}

	totalPixels := float64(tb.Dx() * tb.Dy())
	allowedMismatches := int(totalPixels * (1 - precision))

	for y := area.Min.Y; y <= maxY; y++ {
		for x := area.Min.X; x <= maxX; x++ {
			if matchesAt(img, tpl, x, y, allowedMismatches) {
				return image.Pt(x, y), true
			}
		}
	}
	return image.Point{}, false
}

func matchesAt(img, tpl image.Image, x, y, allowedMismatches int) bool {
	tb := tpl.Bounds()
	mismatches := 0
	for ty := 0; ty < tb.Dy(); ty++ {
		for tx := 0; tx < tb.Dx(); tx++ {
			r1, g1, b1, _ := img.At(x+tx, y+ty).RGBA()
			r2, g2, b2, _ := tpl.At(tb.Min.X+tx, tb.Min.Y+ty).RGBA()
			if absDiff(r1, r2)+absDiff(g1, g2)+absDiff(b1, b2) > colorTolerance {
				mismatches++
				if mismatches > allowedMismatches {
					return false
				}
			}
		}
	}
	return true
}
