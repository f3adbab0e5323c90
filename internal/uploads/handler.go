package uploads

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/shared/server/middleware"
	"resume-analyzer/internal/shared/server/respond"
	"resume-analyzer/internal/shared/storage/object"
	"resume-analyzer/internal/shared/telemetry"
	"resume-analyzer/internal/shared/util"
)

const (
	formField = "resume"
	// multipartOverhead leaves room for boundaries and part headers.
	multipartOverhead = 64 << 10
)

// Handler accepts resume uploads and returns their extracted text.
type Handler struct {
	Extractor *extract.Extractor
	// Store archives the original upload after a successful extraction. Nil disables archival.
	Store    object.ObjectStore
	MaxBytes int64
}

func NewHandler(extractor *extract.Extractor, store object.ObjectStore) *Handler {
	return &Handler{Extractor: extractor, Store: store, MaxBytes: extractor.MaxBytes}
}

type parseResponse struct {
	Text     string `json:"text"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileKey  string `json:"fileKey,omitempty"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/parse-resume", h.parseResume)
}

func (h *Handler) parseResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if h.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+multipartOverhead)
	}

	header, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeTooLarge, "file exceeds upload limit")
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "No file uploaded.")
		return
	}
	if h.MaxBytes > 0 && header.Size > h.MaxBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeTooLarge, "file exceeds upload limit")
		return
	}

	fileName, err := util.SanitizeFileName(header.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid file name")
		return
	}
	mimeType := extract.NormalizeMimeType(header.Header.Get("Content-Type"), fileName)

	file, err := header.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeExtractionFailed, "failed to read upload")
		return
	}
	defer file.Close()

	text, err := h.Extractor.ExtractUpload(c.Request.Context(), file, mimeType, fileName)
	if err != nil {
		writeExtractError(c, err, userID, fileName, mimeType)
		return
	}

	resp := parseResponse{Text: text, FileName: fileName, MimeType: mimeType}
	if h.Store != nil {
		resp.FileKey = h.archive(c, file, userID, fileName, mimeType)
	}

	telemetry.Info("upload.parsed", map[string]any{
		"user_id":    userID,
		"file_name":  fileName,
		"mime_type":  mimeType,
		"size_bytes": header.Size,
		"text_chars": len(text),
		"archived":   resp.FileKey != "",
		"request_id": c.GetString("requestId"),
	})
	respond.OK(c, resp, "Resume parsed successfully")
}

// archive stores the original upload. Failures are logged and the parse still succeeds.
func (h *Handler) archive(c *gin.Context, file multipart.File, userID, fileName, mimeType string) string {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		telemetry.Warn("upload.archive_failed", map[string]any{"user_id": userID, "err": err.Error()})
		return ""
	}
	obj, err := h.Store.Save(c.Request.Context(), userID, fileName, mimeType, file)
	if err != nil {
		telemetry.Warn("upload.archive_failed", map[string]any{
			"user_id":   userID,
			"file_name": fileName,
			"err":       err.Error(),
		})
		return ""
	}
	return obj.Key
}

func writeExtractError(c *gin.Context, err error, userID, fileName, mimeType string) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFileType):
		respond.Error(c, http.StatusBadRequest, respond.CodeUnsupportedFileType,
			"Unsupported file type. Please upload a PDF or DOCX file ("+strings.Join(extract.AllowedTypes(), ", ")+").")
	case errors.Is(err, extract.ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeTooLarge, "file exceeds upload limit")
	case errors.Is(err, extract.ErrNoText):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "No text could be extracted from the file.")
	default:
		telemetry.Error("upload.extract_failed", map[string]any{
			"user_id":   userID,
			"file_name": fileName,
			"mime_type": mimeType,
			"err":       err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, respond.CodeExtractionFailed, "Failed to parse resume.")
	}
}
