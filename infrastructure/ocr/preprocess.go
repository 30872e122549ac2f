package ocr

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// PrepareStats readies a stat-row capture for text recognition: 3x
// cubic upscale and desaturation. Stat rows are large enough that no
// binarization is needed.
func PrepareStats(img image.Image) image.Image {
	return grayscale(upscale(img, 3))
}

// stageBlobMin is the minimum connected-component area (in upscaled
// pixels) kept by PrepareStage. Smaller white blobs are compression
// artifacts around the stage counter, not digits.
const stageBlobMin = 200

// PrepareStage readies the small stage-counter capture for digit
// recognition: 5x upscale, desaturation, binarization at 230 and
// removal of small white blobs.
func PrepareStage(img image.Image) image.Image {
	gray := grayscale(upscale(img, 5))
	mask := binarize(gray, 230)
	dropSmallBlobs(mask, stageBlobMin)
	return mask
}

func upscale(img image.Image, factor uint) image.Image {
	b := img.Bounds()
	return resize.Resize(uint(b.Dx())*factor, uint(b.Dy())*factor, img, resize.Bicubic)
}

func grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return gray
}

func binarize(gray *image.Gray, threshold uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if gray.GrayAt(x, y).Y > threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// dropSmallBlobs blacks out white connected components smaller than
// minArea, in place. Flood fill over 4-connectivity.
func dropSmallBlobs(mask *image.Gray, minArea int) {
	b := mask.Bounds()
	visited := make([]bool, b.Dx()*b.Dy())
	idx := func(x, y int) int { return (y-b.Min.Y)*b.Dx() + (x - b.Min.X) }

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if visited[idx(x, y)] || mask.GrayAt(x, y).Y == 0 {
				continue
			}

			// Collect this component.
			var blob []image.Point
			stack := []image.Point{{X: x, Y: y}}
			visited[idx(x, y)] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				blob = append(blob, p)

				for _, n := range []image.Point{
					{X: p.X + 1, Y: p.Y}, {X: p.X - 1, Y: p.Y},
					{X: p.X, Y: p.Y + 1}, {X: p.X, Y: p.Y - 1},
				} {
					if n.X < b.Min.X || n.X >= b.Max.X || n.Y < b.Min.Y || n.Y >= b.Max.Y {
						continue
					}
					if visited[idx(n.X, n.Y)] || mask.GrayAt(n.X, n.Y).Y == 0 {
						continue
					}
					visited[idx(n.X, n.Y)] = true
					stack = append(stack, n)
				}
			}

			if len(blob) < minArea {
				for _, p := range blob {
					mask.SetGray(p.X, p.Y, color.Gray{})
				}
			}
		}
	}
}
