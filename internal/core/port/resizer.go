package port

import "image"

type Resizer interface {
	// Fit downsamples the raster so that its longest side is exactly
	// maxDimension, preserving aspect ratio. Rasters already within bounds are
	// returned unchanged. Pure transform, never fails.
	Fit(img image.Image, maxDimension int) image.Image
}
