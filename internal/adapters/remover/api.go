package remover

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// APIRemover delegates segmentation to a remote rembg-style HTTP service. The
// service is asked for the grayscale foreground mask, which is then scaled to
// the source dimensions and composited into the alpha channel locally.
type APIRemover struct {
	endpoint string
	client   *http.Client
}

func NewAPIRemover(endpoint string, timeout time.Duration) *APIRemover {
	return &APIRemover{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (a *APIRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	payload := new(bytes.Buffer)
	if err := imaging.Encode(payload, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding model input: %w", err)
	}

	mask, err := a.requestMask(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("segmentation request failed: %w", err)
	}

	return applyMask(img, mask), nil
}

func (a *APIRemover) requestMask(ctx context.Context, payload *bytes.Buffer) (image.Image, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "input.png")
	if err != nil {
		return nil, fmt.Errorf("error creating form file: %w", err)
	}

	if _, err := io.Copy(part, payload); err != nil {
		return nil, fmt.Errorf("error writing form file: %w", err)
	}

	if err := writer.WriteField("only_mask", "true"); err != nil {
		return nil, fmt.Errorf("error writing form field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("error finalizing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		log.Error().Int("status", res.StatusCode).Bytes("body", detail).Msg("segmentation service error")
		return nil, fmt.Errorf("unexpected status code from segmentation service: %d", res.StatusCode)
	}

	mask, err := imaging.Decode(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error decoding mask response: %w", err)
	}

	log.Debug().
		Int("maskWidth", mask.Bounds().Dx()).
		Int("maskHeight", mask.Bounds().Dy()).
		Msg("received segmentation mask")

	return mask, nil
}
