package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"cutout/internal/adapters/codec"
	"cutout/internal/adapters/resizer"
	"cutout/internal/core/domain"
	"cutout/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockCodec struct {
	decodeImg   image.Image
	decodeErr   error
	encoded     []byte
	encodeErr   error
	decodeCalls int
	encodeCalls int
}

func (m *MockCodec) Decode(_ []byte) (image.Image, error) {
	m.decodeCalls++
	return m.decodeImg, m.decodeErr
}

func (m *MockCodec) EncodePNG(_ image.Image) ([]byte, error) {
	m.encodeCalls++
	return m.encoded, m.encodeErr
}

type MockResizer struct {
	calls   int
	lastMax int
}

func (m *MockResizer) Fit(img image.Image, maxDimension int) image.Image {
	m.calls++
	m.lastMax = maxDimension
	return img
}

type MockRemover struct {
	err   error
	calls int
}

func (m *MockRemover) Remove(_ context.Context, img image.Image) (image.Image, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return img, nil
}

type recordingReporter struct {
	trail []domain.Progress
}

func (r *recordingReporter) Report(progress domain.Progress) {
	r.trail = append(r.trail, progress)
}

func testUpload(data []byte) *domain.UploadedImage {
	return &domain.UploadedImage{Data: data, Filename: "photo.png", MIME: "image/png"}
}

func TestProcessRejectsOversizedUpload(t *testing.T) {
	mc := &MockCodec{}
	mr := &MockResizer{}
	mg := &MockRemover{}
	p := NewPipeline(mc, mr, mg, NewResultCache())

	upload := testUpload(make([]byte, domain.MaxUploadBytes+1))

	_, err := p.Process(context.Background(), upload, port.DiscardProgress)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	assert.Zero(t, mc.decodeCalls)
	assert.Zero(t, mr.calls)
	assert.Zero(t, mg.calls)
}

func TestProcessRejectsUnsupportedFormat(t *testing.T) {
	mc := &MockCodec{}
	mr := &MockResizer{}
	mg := &MockRemover{}
	p := NewPipeline(mc, mr, mg, NewResultCache())

	upload := &domain.UploadedImage{Data: []byte("plain text"), Filename: "notes.txt", MIME: "text/plain"}

	_, err := p.Process(context.Background(), upload, port.DiscardProgress)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	assert.Zero(t, mc.decodeCalls)
	assert.Zero(t, mg.calls)
}

func TestProcessDecodeError(t *testing.T) {
	mc := &MockCodec{decodeErr: errors.New("mock error")}
	mr := &MockResizer{}
	mg := &MockRemover{}
	p := NewPipeline(mc, mr, mg, NewResultCache())

	_, err := p.Process(context.Background(), testUpload([]byte("garbage")), port.DiscardProgress)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecode)

	assert.Zero(t, mr.calls)
	assert.Zero(t, mg.calls)
}

func TestProcessRemovalError(t *testing.T) {
	mc := &MockCodec{decodeImg: image.NewNRGBA(image.Rect(0, 0, 4, 4))}
	mg := &MockRemover{err: errors.New("mock error")}
	p := NewPipeline(mc, &MockResizer{}, mg, NewResultCache())

	_, err := p.Process(context.Background(), testUpload([]byte("bytes")), port.DiscardProgress)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemoval)

	assert.Zero(t, mc.encodeCalls)
}

func TestProcessEncodeError(t *testing.T) {
	mc := &MockCodec{
		decodeImg: image.NewNRGBA(image.Rect(0, 0, 4, 4)),
		encodeErr: errors.New("mock error"),
	}
	p := NewPipeline(mc, &MockResizer{}, &MockRemover{}, NewResultCache())

	_, err := p.Process(context.Background(), testUpload([]byte("bytes")), port.DiscardProgress)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemoval)
}

func TestProcessSuccess(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	mc := &MockCodec{decodeImg: img, encoded: []byte("png bytes")}
	mr := &MockResizer{}
	mg := &MockRemover{}
	cache := NewResultCache()
	p := NewPipeline(mc, mr, mg, cache)

	reporter := &recordingReporter{}

	result, err := p.Process(context.Background(), testUpload([]byte("input")), reporter)
	require.NoError(t, err)

	assert.Equal(t, img, result.Original)
	assert.Equal(t, []byte("png bytes"), result.PNG)
	assert.False(t, result.CacheHit)
	assert.Equal(t, Fingerprint([]byte("input")), result.Fingerprint)
	assert.Positive(t, result.Elapsed)

	assert.Equal(t, domain.MaxDimension, mr.lastMax)
	assert.Equal(t, 1, cache.Len())

	require.NotEmpty(t, reporter.trail)
	assert.Equal(t, 100, reporter.trail[len(reporter.trail)-1].Percentage)

	last := 0
	for _, progress := range reporter.trail {
		assert.GreaterOrEqual(t, progress.Percentage, last)
		last = progress.Percentage
	}
}

func TestProcessMemoizesByFingerprint(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	mc := &MockCodec{decodeImg: img, encoded: []byte("png bytes")}
	mg := &MockRemover{}
	p := NewPipeline(mc, &MockResizer{}, mg, NewResultCache())

	first, err := p.Process(context.Background(), testUpload([]byte("input")), port.DiscardProgress)
	require.NoError(t, err)

	second, err := p.Process(context.Background(), testUpload([]byte("input")), port.DiscardProgress)
	require.NoError(t, err)

	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.PNG, second.PNG)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	assert.Equal(t, 1, mc.decodeCalls)
	assert.Equal(t, 1, mg.calls)
}

// alphaRemover stands in for the model: same dimensions out, alpha filled in.
type alphaRemover struct{}

func (alphaRemover) Remove(_ context.Context, img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out.SetNRGBA(x, y, color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 128})
		}
	}

	return out, nil
}

func TestProcessRedSquareKeepsDimensions(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 500, 500))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
		src.Pix[i+3] = 255
	}

	imagingCodec := codec.NewImagingCodec()
	data, err := imagingCodec.EncodePNG(src)
	require.NoError(t, err)

	p := NewPipeline(imagingCodec, resizer.NewLanczos(), alphaRemover{}, NewResultCache())

	result, err := p.Process(context.Background(), testUpload(data), port.DiscardProgress)
	require.NoError(t, err)

	// 500 < 2000, so no resize happens anywhere in the run.
	assert.Equal(t, 500, result.Processed.Bounds().Dx())
	assert.Equal(t, 500, result.Processed.Bounds().Dy())
	assert.Equal(t, 500, result.Original.Bounds().Dx())

	decoded, err := imagingCodec.Decode(result.PNG)
	require.NoError(t, err)
	assert.Equal(t, 500, decoded.Bounds().Dx())
	assert.Equal(t, 500, decoded.Bounds().Dy())
}
