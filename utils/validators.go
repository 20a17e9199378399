package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Upload limits (bytes)
const (
	MaxImageSize      = 5 * 1024 * 1024   // 5MB
	MaxAttachmentSize = 10 * 1024 * 1024  // 10MB
	MaxStoragePerUser = 100 * 1024 * 1024 // 100MB across all upload surfaces
)

// SniffLen is how many leading bytes of a file are needed for MIME detection.
const SniffLen = 3072

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

var allowedAttachmentExtensions = []string{
	".jpg", ".jpeg", ".png", ".webp",
	".pdf", ".doc", ".docx", ".xls", ".xlsx",
}

var allowedImageMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

var allowedAttachmentMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ValidationError names the violated upload rule (size, extension, mime, quota).
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for a rule
func NewValidationError(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// ValidateImageFile validates an uploaded image: size <= 5MB, allowed
// extension, and the actual content (magic bytes) must be an allowed
// image MIME. head holds the first SniffLen bytes of the file.
func ValidateImageFile(filename string, size int64, head []byte) error {
	if size <= 0 || size > MaxImageSize {
		return NewValidationError("size", "image must not exceed %dMB (got %.2fMB)",
			MaxImageSize/(1024*1024), float64(size)/(1024*1024))
	}
	if err := validateExtension(filename, allowedImageExtensions, "image"); err != nil {
		return err
	}
	return validateMIME(head, allowedImageMIMEs, "image")
}

// ValidateAttachmentFile validates an uploaded attachment: size <= 10MB
// and an extended allow-list (images + PDF + Office documents).
func ValidateAttachmentFile(filename string, size int64, head []byte) error {
	if size <= 0 || size > MaxAttachmentSize {
		return NewValidationError("size", "attachment must not exceed %dMB (got %.2fMB)",
			MaxAttachmentSize/(1024*1024), float64(size)/(1024*1024))
	}
	if err := validateExtension(filename, allowedAttachmentExtensions, "attachment"); err != nil {
		return err
	}
	return validateMIME(head, allowedAttachmentMIMEs, "attachment")
}

func validateExtension(filename string, allowed []string, kind string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return NewValidationError("extension", "%s extension %q is not allowed (accepted: %s)",
		kind, ext, strings.Join(allowed, ", "))
}

// validateMIME sniffs the real content type from the magic bytes; a file
// renamed to a permitted extension does not pass.
func validateMIME(head []byte, allowed []string, kind string) error {
	detected := mimetype.Detect(head)
	if mimetype.EqualsAny(detected.String(), allowed...) {
		return nil
	}
	return NewValidationError("mime", "%s content type %q is not allowed (accepted: %s)",
		kind, detected.String(), strings.Join(allowed, ", "))
}
