package codec

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImagingCodec decodes uploads and encodes cutouts using the imaging library,
// which sniffs PNG and JPEG from the byte stream.
type ImagingCodec struct{}

func NewImagingCodec() *ImagingCodec {
	return &ImagingCodec{}
}

func (c *ImagingCodec) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding upload: %w", err)
	}

	return img, nil
}

func (c *ImagingCodec) EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}

	return buf.Bytes(), nil
}
