package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"resume-analyzer/internal/shared/telemetry"
)

const defaultMaxBytes = 10 << 20

var ErrTooLarge = errors.New("file exceeds upload limit")

// Extractor turns uploaded resume streams into text. Uploads are spooled to
// a temporary file which is removed before ExtractUpload returns.
type Extractor struct {
	TempDir  string
	MaxBytes int64
}

// New builds an Extractor spooling into tempDir (os.TempDir when empty).
func New(tempDir string, maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Extractor{TempDir: tempDir, MaxBytes: maxBytes}
}

// ExtractUpload validates the declared type, spools r to disk and extracts text.
func (e *Extractor) ExtractUpload(ctx context.Context, r io.Reader, mimeType string, fileName string) (string, error) {
	if !Supported(mimeType, fileName) {
		return "", &UnsupportedFileTypeError{MimeType: NormalizeMimeType(mimeType, fileName)}
	}

	path, err := e.spool(r)
	if path != "" {
		defer e.cleanup(path)
	}
	if err != nil {
		return "", err
	}

	return ExtractFile(ctx, path, NormalizeMimeType(mimeType, fileName))
}

func (e *Extractor) spool(r io.Reader) (string, error) {
	f, err := os.CreateTemp(e.TempDir, "resume-upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	limit := e.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	n, copyErr := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if copyErr != nil {
		return path, &ExtractionError{Err: fmt.Errorf("spool upload: %w", copyErr)}
	}
	if closeErr != nil {
		return path, &ExtractionError{Err: fmt.Errorf("spool upload: %w", closeErr)}
	}
	if n > limit {
		return path, ErrTooLarge
	}
	return path, nil
}

func (e *Extractor) cleanup(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		telemetry.Error("extract.cleanup_failed", map[string]any{
			"path": path,
			"err":  err.Error(),
		})
	}
}
