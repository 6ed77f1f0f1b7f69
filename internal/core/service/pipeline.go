package service

import (
	"context"
	"fmt"
	"time"

	"cutout/internal/core/domain"
	"cutout/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Pipeline sequences one upload through validate, decode, resize, remove and
// encode. It holds no per-request state; everything a run produces travels in
// the returned Result.
type Pipeline struct {
	codec   port.Codec
	resizer port.Resizer
	remover port.Remover
	cache   *ResultCache
}

func NewPipeline(codec port.Codec, resizer port.Resizer, remover port.Remover, cache *ResultCache) *Pipeline {
	return &Pipeline{codec: codec, resizer: resizer, remover: remover, cache: cache}
}

// Process runs the full pipeline for one upload. Validation failures are
// reported before any downstream stage is invoked; any stage failure is
// terminal for the request and no partial output is returned. On success the
// Result carries the original raster as uploaded, the cutout, its PNG
// encoding and the elapsed wall-clock time.
func (p *Pipeline) Process(ctx context.Context, upload *domain.UploadedImage,
	reporter port.ProgressReporter) (*domain.Result, error) {
	start := time.Now()

	l := log.With().
		Str("filename", upload.Filename).
		Int("bytes", upload.Size()).
		Logger()

	if upload.Size() > domain.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, upload.Size())
	}

	if !upload.Supported() {
		return nil, fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedFormat, upload.Filename, upload.MIME)
	}

	progress := &monotonicReporter{next: reporter}
	progress.Report(domain.Progress{Percentage: 10, Message: "reading image"})

	fingerprint := Fingerprint(upload.Data)

	if cached, ok := p.cache.Get(fingerprint); ok {
		l.Debug().Str("fingerprint", fingerprint).Msg("returning memoized result")

		elapsed := time.Since(start)
		progress.Report(domain.Progress{Percentage: 100,
			Message: fmt.Sprintf("completed in %.2f seconds (cached)", elapsed.Seconds())})

		hit := *cached
		hit.Elapsed = elapsed
		hit.CacheHit = true
		return &hit, nil
	}

	original, err := p.codec.Decode(upload.Data)
	if err != nil {
		l.Warn().Err(err).Msg("upload could not be decoded")
		return nil, fmt.Errorf("%w: %s", domain.ErrDecode, err)
	}

	progress.Report(domain.Progress{Percentage: 30, Message: "processing image"})

	resized := p.resizer.Fit(original, domain.MaxDimension)

	removed, err := p.remover.Remove(ctx, resized)
	if err != nil {
		l.Error().Err(err).Msg("background removal failed")
		return nil, fmt.Errorf("%w: %s", domain.ErrRemoval, err)
	}

	progress.Report(domain.Progress{Percentage: 90, Message: "encoding result"})

	encoded, err := p.codec.EncodePNG(removed)
	if err != nil {
		l.Error().Err(err).Msg("failed to encode cutout")
		return nil, fmt.Errorf("%w: %s", domain.ErrRemoval, err)
	}

	result := &domain.Result{
		Fingerprint: fingerprint,
		Original:    original,
		Processed:   removed,
		PNG:         encoded,
		Elapsed:     time.Since(start),
	}

	p.cache.Put(fingerprint, result)

	progress.Report(domain.Progress{Percentage: 100,
		Message: fmt.Sprintf("completed in %.2f seconds", result.Elapsed.Seconds())})

	l.Info().
		Str("fingerprint", fingerprint).
		Dur("elapsed", result.Elapsed).
		Msg("pipeline finished")

	return result, nil
}

// Lookup fetches a memoized result by fingerprint, for download handlers that
// serve the PNG of an earlier run.
func (p *Pipeline) Lookup(fingerprint string) (*domain.Result, bool) {
	return p.cache.Get(fingerprint)
}

// monotonicReporter clamps percentages so a run's trail never moves backwards.
type monotonicReporter struct {
	next port.ProgressReporter
	last int
}

func (m *monotonicReporter) Report(progress domain.Progress) {
	if progress.Percentage < m.last {
		progress.Percentage = m.last
	}
	m.last = progress.Percentage
	m.next.Report(progress)
}
