package remover

import (
	"context"
	"fmt"
	"image"

	"github.com/josuedeavila/rmbg"
	"github.com/rs/zerolog/log"
)

// engine is the slice of the rmbg inference API the adapter uses. Narrowed to
// an interface so tests can substitute a fake.
type engine interface {
	RemoveBackground(img image.Image) (image.Image, error)
}

// ONNXRemover runs the u2net segmentation model in-process via onnxruntime.
type ONNXRemover struct {
	engine engine
	close  func()
}

func NewONNXRemover(modelPath string) (*ONNXRemover, error) {
	e, err := rmbg.New(&rmbg.Config{ModelPath: modelPath})
	if err != nil {
		return nil, fmt.Errorf("loading onnx model from %s: %w", modelPath, err)
	}

	log.Info().Str("modelPath", modelPath).Msg("onnx background removal engine ready")

	return &ONNXRemover{
		engine: e,
		close:  func() { e.Close() },
	}, nil
}

func (r *ONNXRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := r.engine.RemoveBackground(img)
	if err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}

	return out, nil
}

// Close releases the onnxruntime session. The remover must not be used
// afterwards.
func (r *ONNXRemover) Close() {
	if r.close != nil {
		r.close()
	}
}
