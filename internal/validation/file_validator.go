// Package validation checks uploaded document files before they reach
// the agents.
package validation

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"

	apierrors "gripulse/internal/errors"
)

// DocumentKind classifies an accepted upload.
type DocumentKind string

const (
	KindPDF      DocumentKind = "pdf"
	KindWorkbook DocumentKind = "workbook"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// FileValidator validates uploaded document files.
type FileValidator struct {
	logger  *slog.Logger
	maxSize int
}

// NewFileValidator creates a file validator. maxSize caps the accepted
// payload in bytes.
func NewFileValidator(logger *slog.Logger, maxSize int) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:  logger.With(slog.String("component", "file_validator")),
		maxSize: maxSize,
	}
}

// ValidateUpload classifies the upload by extension and checks the
// payload actually carries the matching file signature.
func (v *FileValidator) ValidateUpload(name string, data []byte) (DocumentKind, error) {
	if len(data) == 0 {
		return "", apierrors.ErrValidation("file", "Uploaded file is empty")
	}
	if v.maxSize > 0 && len(data) > v.maxSize {
		v.logger.Warn("upload rejected, too large",
			slog.String("name", name),
			slog.Int("size", len(data)))
		return "", apierrors.ErrValidation("file", "Uploaded file exceeds the size limit")
	}

	switch strings.ToLower(filepath.Ext(filepath.Base(name))) {
	case ".pdf":
		if !bytes.HasPrefix(data, pdfMagic) {
			return "", apierrors.ErrValidation("file", "File does not look like a PDF")
		}
		return KindPDF, nil
	case ".xlsx", ".xls":
		// xlsx workbooks are zip archives
		if !bytes.HasPrefix(data, zipMagic) {
			return "", apierrors.ErrValidation("file", "File does not look like an Excel workbook")
		}
		return KindWorkbook, nil
	default:
		return "", apierrors.ErrValidation("file", "Only PDF and Excel uploads are supported")
	}
}
