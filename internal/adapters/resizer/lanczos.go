package resizer

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

// Lanczos fits rasters into a bounding dimension with Lanczos3 resampling.
type Lanczos struct{}

func NewLanczos() *Lanczos {
	return &Lanczos{}
}

func (r *Lanczos) Fit(img image.Image, maxDimension int) image.Image {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	longest := width
	if height > width {
		longest = height
	}

	if longest <= maxDimension {
		return img
	}

	scale := float64(maxDimension) / float64(longest)
	newWidth := int(math.Round(float64(width) * scale))
	newHeight := int(math.Round(float64(height) * scale))

	return resize.Resize(uint(newWidth), uint(newHeight), img, resize.Lanczos3)
}
