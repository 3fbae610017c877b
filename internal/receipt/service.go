package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zombor/receipt-ocr/internal/ocr"
)

// IDGenerator generates unique IDs for upload records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Options tunes a Service
type Options struct {
	Extractor  Extractor
	OCRTimeout time.Duration // zero means no deadline beyond the request's own
	DB         DB            // optional upload ledger
}

// Service runs the upload → OCR → extraction pipeline
type Service struct {
	storage     Storage
	engine      ocr.Engine
	extractor   Extractor
	ocrTimeout  time.Duration
	db          DB
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(storage Storage, engine ocr.Engine, opts Options) *Service {
	return NewServiceWithDeps(storage, engine, opts, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(storage Storage, engine ocr.Engine, opts Options, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		storage:     storage,
		engine:      engine,
		extractor:   opts.Extractor,
		ocrTimeout:  opts.OCRTimeout,
		db:          opts.DB,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// EngineName reports which OCR engine the service uses
func (s *Service) EngineName() string {
	return s.engine.Name()
}

// isImageType reports whether a declared media type is an image type
func isImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// ProcessReceipt stores an uploaded image, runs OCR on it and extracts the receipt fields.
// Returned errors are *Error values; use KindOf to classify them.
func (s *Service) ProcessReceipt(ctx context.Context, filename, contentType string, r io.Reader) (*Result, error) {
	if !isImageType(contentType) {
		return nil, validationError("Uploaded file is not an image.")
	}

	stored, err := s.storage.Save(filename, r)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile):
			return nil, validationError("Uploaded file is empty.")
		case errors.Is(err, ErrInvalidFilename):
			return nil, validationError("Uploaded file has no usable filename.")
		default:
			return nil, ioError("Error saving file", err)
		}
	}

	s.recordUpload(filename, contentType, stored)

	text, err := s.recognize(ctx, stored.Path)
	if err != nil {
		slog.Error("Failed to recognize text",
			"engine", s.engine.Name(),
			"path", stored.Path,
			"content_type", contentType,
			"file_size", stored.Size,
			"error", err,
		)
		return nil, ocrError("Error extracting text from image", err)
	}
	slog.Debug("Recognized text", "path", stored.Path, "text", text)

	// Only the empty string counts as no text; a bare form feed still goes through extraction
	if text == "" {
		return nil, ocrError("Please Upload valid or clear image", nil)
	}

	return &Result{
		ReceiptData:  s.extractor.Extract(text),
		TempFilePath: stored.Path,
	}, nil
}

func (s *Service) recognize(ctx context.Context, path string) (string, error) {
	if s.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ocrTimeout)
		defer cancel()
	}
	return s.engine.Recognize(ctx, path)
}

// recordUpload writes a ledger entry; a ledger failure never fails the upload
func (s *Service) recordUpload(filename, contentType string, stored *StoredFile) {
	if s.db == nil {
		return
	}
	upload := &Upload{
		ID:          s.idGenerator.Generate(),
		Filename:    filename,
		Path:        stored.Path,
		ContentType: contentType,
		Size:        stored.Size,
		SHA256:      stored.SHA256,
		CreatedAt:   s.timeSource.Now(),
	}
	if err := s.db.SaveUpload(upload); err != nil {
		slog.Warn("Failed to record upload", "path", stored.Path, "error", err)
	}
}

// ListUploads returns the upload ledger; it is empty when no ledger is configured
func (s *Service) ListUploads() ([]*Upload, error) {
	if s.db == nil {
		return []*Upload{}, nil
	}
	uploads, err := s.db.ListUploads()
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	return uploads, nil
}

// GetUpload retrieves a single ledger record
func (s *Service) GetUpload(id string) (*Upload, error) {
	if s.db == nil {
		return nil, fmt.Errorf("upload not found: %s", id)
	}
	upload, err := s.db.GetUpload(id)
	if err != nil {
		return nil, fmt.Errorf("getting upload: %w", err)
	}
	return upload, nil
}
