package server

import (
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cutout/internal/core/domain"
	"cutout/internal/core/port"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed assets/index.html
var indexHTML []byte

// Processor is the slice of the pipeline the HTTP surface depends on.
type Processor interface {
	Process(ctx context.Context, upload *domain.UploadedImage, reporter port.ProgressReporter) (*domain.Result, error)
	Lookup(fingerprint string) (*domain.Result, bool)
}

type Server struct {
	processor Processor
	engine    *gin.Engine
}

func New(processor Processor) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = domain.MaxUploadBytes

	s := &Server{processor: processor, engine: engine}

	engine.GET("/", s.handleIndex)
	engine.GET("/healthz", s.handleHealth)

	api := engine.Group("/api/v1")
	api.POST("/remove", s.handleRemove)
	api.GET("/result/:fingerprint/"+domain.OutputFileName, s.handleDownload)

	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info().Str("addr", addr).Msg("server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type removeResponse struct {
	Fingerprint    string            `json:"fingerprint"`
	Original       string            `json:"original"`
	Processed      string            `json:"processed"`
	DownloadURL    string            `json:"downloadUrl"`
	ElapsedSeconds float64           `json:"elapsedSeconds"`
	CacheHit       bool              `json:"cacheHit"`
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	Progress       []domain.Progress `json:"progress"`
}

func (s *Server) handleRemove(c *gin.Context) {
	requestID, err := uuid.NewV4()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
		return
	}

	l := log.With().Str("requestId", requestID.String()).Logger()

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image upload"})
		return
	}

	if fileHeader.Size > domain.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": tooLargeError})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		l.Error().Err(err).Msg("failed to open multipart file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, domain.MaxUploadBytes+1))
	if err != nil {
		l.Error().Err(err).Msg("failed to read multipart file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
		return
	}

	upload := &domain.UploadedImage{
		Data:     data,
		Filename: fileHeader.Filename,
		MIME:     fileHeader.Header.Get("Content-Type"),
	}

	trail := &trailReporter{}

	result, err := s.processor.Process(c.Request.Context(), upload, trail)
	if err != nil {
		s.respondError(c, &l, err)
		return
	}

	bounds := result.Processed.Bounds()

	c.JSON(http.StatusOK, removeResponse{
		Fingerprint:    result.Fingerprint,
		Original:       dataURL(http.DetectContentType(data), data),
		Processed:      dataURL("image/png", result.PNG),
		DownloadURL:    fmt.Sprintf("/api/v1/result/%s/%s", result.Fingerprint, domain.OutputFileName),
		ElapsedSeconds: result.Elapsed.Seconds(),
		CacheHit:       result.CacheHit,
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		Progress:       trail.trail,
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	result, ok := s.processor.Lookup(c.Param("fingerprint"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result for that fingerprint"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", domain.OutputFileName))
	c.Data(http.StatusOK, "image/png", result.PNG)
}

const (
	genericError     = "An unexpected error occurred."
	tooLargeError    = "File too large. Please upload an image smaller than 10MB."
	unsupportedError = "Unsupported file type. Supported formats: PNG, JPG, JPEG."
	decodeError      = "Could not read that image. Please upload a valid PNG or JPEG."
)

// respondError maps domain errors to user-facing messages. Removal failures
// keep their diagnostic detail in the operator log only.
func (s *Server) respondError(c *gin.Context, l *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": tooLargeError})
	case errors.Is(err, domain.ErrUnsupportedFormat):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": unsupportedError})
	case errors.Is(err, domain.ErrDecode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": decodeError})
	default:
		l.Error().Err(err).Msg("pipeline failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
	}
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// trailReporter records the progress trail of one run so it can be returned
// alongside the result.
type trailReporter struct {
	trail []domain.Progress
}

func (t *trailReporter) Report(progress domain.Progress) {
	t.trail = append(t.trail, progress)
}
