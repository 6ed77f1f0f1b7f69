package remover

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// applyMask composites a grayscale foreground mask into the alpha channel of
// the source raster. Models typically predict at their own resolution, so the
// mask is first scaled to the source dimensions.
func applyMask(src image.Image, mask image.Image) *image.NRGBA {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	scaled := mask
	if mask.Bounds().Dx() != width || mask.Bounds().Dy() != height {
		dst := image.NewGray(image.Rect(0, 0, width, height))
		draw.BiLinear.Scale(dst, dst.Bounds(), mask, mask.Bounds(), draw.Src, nil)
		scaled = dst
	}

	maskMin := scaled.Bounds().Min
	out := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			m, _, _, _ := scaled.At(maskMin.X+x, maskMin.Y+y).RGBA()

			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(m >> 8),
			})
		}
	}

	return out
}
