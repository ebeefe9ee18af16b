package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/kita-portal/kita-api/pkg/errors"
)

const sniffLen = 512

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type fileStore interface {
	SaveStream(filename string, r io.Reader, limit int64) (int64, error)
}

// UploadConfig controls accepted files.
type UploadConfig struct {
	MaxBytes     int64
	AllowedMIMEs []string
	URLPrefix    string
}

// UploadResult describes a stored file.
type UploadResult struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// UploadService stores images referenced by children and teachers.
type UploadService struct {
	store   fileStore
	metrics *MetricsService
	logger  *zap.Logger
	cfg     UploadConfig
	allowed map[string]bool
}

// NewUploadService constructs an UploadService.
func NewUploadService(store fileStore, metrics *MetricsService, logger *zap.Logger, cfg UploadConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/webp"}
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/uploads"
	}
	allowed := make(map[string]bool, len(cfg.AllowedMIMEs))
	for _, m := range cfg.AllowedMIMEs {
		allowed[strings.ToLower(m)] = true
	}
	return &UploadService{store: store, metrics: metrics, logger: logger, cfg: cfg, allowed: allowed}
}

// MaxBytes is the largest accepted file.
func (s *UploadService) MaxBytes() int64 {
	return s.cfg.MaxBytes
}

// Store validates the content type of r and writes it under a random name.
// The sniffed type wins; the declared type is only used when sniffing is inconclusive.
func (s *UploadService) Store(ctx context.Context, r io.Reader, declaredType string) (*UploadResult, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.metrics.RecordUpload("error")
		return nil, appErrors.Internal(err, "failed to read upload")
	}
	head = head[:n]
	if n == 0 {
		s.metrics.RecordUpload("rejected")
		return nil, rejectFile("Datei ist leer")
	}

	contentType := detectContentType(head, declaredType)
	ext, known := imageExtensions[contentType]
	if !known || !s.allowed[contentType] {
		s.metrics.RecordUpload("rejected")
		return nil, rejectFile("Nur JPEG, PNG oder WebP Bilder sind erlaubt")
	}

	filename := uuid.NewString() + ext
	written, err := s.store.SaveStream(filename, io.MultiReader(bytes.NewReader(head), r), s.cfg.MaxBytes)
	if err != nil {
		if errors.Is(err, io.ErrShortWrite) {
			s.metrics.RecordUpload("rejected")
			return nil, rejectFile("Datei ist zu groß")
		}
		s.metrics.RecordUpload("error")
		return nil, appErrors.Internal(err, "failed to store upload")
	}

	s.metrics.RecordUpload("ok")
	s.logger.Info("upload stored", zap.String("file", filename), zap.String("content_type", contentType), zap.Int64("bytes", written))
	return &UploadResult{
		Path:        path.Join(s.cfg.URLPrefix, filename),
		Size:        written,
		ContentType: contentType,
	}, nil
}

func detectContentType(head []byte, declared string) string {
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	if sniffed != "" && sniffed != "application/octet-stream" {
		return sniffed
	}
	declaredType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return sniffed
	}
	return strings.ToLower(declaredType)
}

func rejectFile(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, "invalid upload").WithDetails(map[string]string{"file": message})
}
