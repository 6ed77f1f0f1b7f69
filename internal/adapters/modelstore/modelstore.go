package modelstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// Ensure returns the local path of the ONNX model weights, downloading them
// from url on first use. The download is written to a temp file and renamed
// into place so that a crashed download never leaves a truncated model behind.
func Ensure(ctx context.Context, path, url string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if url == "" {
		return "", fmt.Errorf("model %s is missing and no download URL is configured", path)
	}

	log.Info().Str("url", url).Str("path", path).Msg("fetching model weights")

	data, err := download(ctx, url)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("error creating model directory: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	tmp := filepath.Join(filepath.Dir(path), id.String()+".part")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing model file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("error moving model into place: %w", err)
	}

	log.Info().Str("path", path).Int("bytes", len(data)).Msg("model weights stored")

	return path, nil
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	return buf, nil
}
