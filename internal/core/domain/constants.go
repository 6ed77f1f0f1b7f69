package domain

import "errors"

const (
	// MaxUploadBytes caps the accepted upload size at 10 MiB.
	MaxUploadBytes = 10 * 1024 * 1024
	// MaxDimension is the bounding dimension oversized rasters are fitted to
	// before inference.
	MaxDimension = 2000
	// OutputFileName is the name the processed PNG is downloaded as.
	OutputFileName = "removed_background.png"
)

var (
	ErrFileTooLarge      = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecode            = errors.New("failed to decode image")
	ErrRemoval           = errors.New("background removal failed")
)
