package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/service"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/response"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 64 * 1024

type uploadService interface {
	Store(ctx context.Context, r io.Reader, declaredType string) (*service.UploadResult, error)
	MaxBytes() int64
}

// UploadHandler accepts child and teacher photos.
type UploadHandler struct {
	uploads uploadService
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(uploads uploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload godoc
// @Summary Upload an image
// @Description Accepts JPEG, PNG or WebP in the multipart field "file".
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploads.MaxBytes()+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid upload").
			WithDetails(map[string]string{"file": "Keine Datei hochgeladen"}))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to open upload"))
		return
	}
	defer file.Close()

	result, err := h.uploads.Store(c.Request.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
