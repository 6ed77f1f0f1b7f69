package port

import (
	"context"
	"image"
)

type Remover interface {
	// Remove runs the segmentation model over the raster and returns a raster
	// of identical dimensions whose alpha channel carries the predicted
	// foreground mask. A model failure aborts the request; there is no retry.
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}
