package validation

import (
	"fmt"
	"strings"

	apperrors "go-leximed/internal/errors"
	"go-leximed/pkg/models"
)

// UploadValidator handles upload and form field validation logic.
// Media types are left to the pipelines, which sniff undeclared uploads.
type UploadValidator struct {
	maxFileSize int64
}

// NewUploadValidator creates a new upload validator; a non-positive size disables the limit
func NewUploadValidator(maxFileSize int64) *UploadValidator {
	return &UploadValidator{maxFileSize: maxFileSize}
}

// ValidateUpload checks that a required upload is present and within the size limit.
// Empty files pass; callers decide what they mean.
func (v *UploadValidator) ValidateUpload(field string, file *models.UploadedFile) error {
	if file == nil {
		return apperrors.NewValidationError(fmt.Sprintf("%s is required.", field), nil)
	}

	if v.maxFileSize > 0 && int64(len(file.Data)) > v.maxFileSize {
		return apperrors.NewValidationError(
			fmt.Sprintf("%s exceeds the maximum upload size of %d bytes.", field, v.maxFileSize), nil)
	}

	return nil
}

// ValidateField checks that a required form field is not blank
func (v *UploadValidator) ValidateField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError(fmt.Sprintf("%s is required.", field), nil)
	}
	return nil
}
