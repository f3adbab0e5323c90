package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtractionFailed    = errors.New("extraction failed")
	ErrNoText              = errors.New("no extractable text")
)

// AllowedTypes lists the MIME types the extractor accepts.
func AllowedTypes() []string {
	return []string{MimePDF, MimeDOCX}
}

// UnsupportedFileTypeError reports a MIME type outside AllowedTypes.
type UnsupportedFileTypeError struct {
	MimeType string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q: upload a PDF (%s) or DOCX (%s) file", e.MimeType, MimePDF, MimeDOCX)
}

func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}

// ExtractionError wraps a parser failure.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// ExtractFile reads the file at path and returns its plain text.
func ExtractFile(ctx context.Context, path string, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := NormalizeMimeType(mimeType, path)
	if isAmbiguous(normalized) {
		normalized = sniffOOXML(path, normalized)
	}

	var (
		text string
		err  error
	)
	switch normalized {
	case MimePDF:
		text, err = extractPDF(path)
	case MimeDOCX:
		text, err = extractDOCX(path)
	default:
		return "", &UnsupportedFileTypeError{MimeType: normalized}
	}
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ExtractionError{Err: ErrNoText}
	}
	return text, nil
}

func extractPDF(path string) (text string, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf: %v", rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdf open: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		b.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func extractDOCX(path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("docx open: %w", err)
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent())
}

// stripDocxXML drops WordprocessingML markup, keeping paragraph and line breaks.
func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String(), nil
}

// NormalizeMimeType maps a declared content type plus file name onto one of
// the extractor's canonical types where possible.
func NormalizeMimeType(mimeType string, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	ext := strings.ToLower(filepath.Ext(fileName))

	switch clean {
	case MimePDF, "application/x-pdf":
		return MimePDF
	case MimeDOCX:
		return MimeDOCX
	case "", "application/octet-stream", "application/zip", "application/x-zip-compressed":
		switch ext {
		case ".pdf":
			return MimePDF
		case ".docx":
			return MimeDOCX
		}
		if clean == "" {
			return "application/octet-stream"
		}
	}
	return clean
}

func isAmbiguous(mimeType string) bool {
	switch mimeType {
	case "application/zip", "application/x-zip-compressed":
		return true
	}
	return false
}

// sniffOOXML looks inside a zip container for the word processing part.
func sniffOOXML(path string, fallback string) string {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fallback
	}
	defer zr.Close()
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return MimeDOCX
		}
	}
	return fallback
}

// Supported reports whether a declared type can be handled without
// inspecting file contents. Zip containers need a content check.
func Supported(mimeType string, fileName string) bool {
	normalized := NormalizeMimeType(mimeType, fileName)
	return normalized == MimePDF || normalized == MimeDOCX || isAmbiguous(normalized)
}
