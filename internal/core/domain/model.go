package domain

import (
	"image"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// UploadedImage is the raw payload of a single upload request. It only lives
// for the duration of that request.
type UploadedImage struct {
	Data     []byte
	Filename string
	MIME     string
}

func (u *UploadedImage) Size() int {
	return len(u.Data)
}

// Result holds both sides of a finished run: the original raster as decoded
// from the upload and the cutout with the foreground mask in its alpha
// channel, already encoded to PNG for download.
type Result struct {
	Fingerprint string
	Original    image.Image
	Processed   image.Image
	PNG         []byte
	Elapsed     time.Duration
	CacheHit    bool
}

// Progress is a point on a single run's progress trail. Percentages are
// monotonically increasing within one run.
type Progress struct {
	Percentage int    `json:"percentage"`
	Message    string `json:"message,omitempty"`
}

var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

var supportedMIMEs = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// Supported reports whether the upload declares one of the accepted image
// types, by extension or by MIME type. The actual bytes are still sniffed by
// the codec afterwards.
func (u *UploadedImage) Supported() bool {
	if supportedExtensions[strings.ToLower(filepath.Ext(u.Filename))] {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(u.MIME)
	if err != nil {
		return false
	}

	return supportedMIMEs[mediaType]
}
