package port

import "image"

type Codec interface {
	// Decode turns an uploaded byte buffer into an in-memory raster, sniffing
	// the format from the bytes. Fails on malformed input.
	Decode(data []byte) (image.Image, error)
	// EncodePNG renders a raster to a PNG byte buffer.
	EncodePNG(img image.Image) ([]byte, error)
}
