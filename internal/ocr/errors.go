package ocr

import (
	"errors"
	"fmt"
)

// Common OCR processing errors
var (
	// ErrEngineUnavailable is returned when the local Tesseract engine or its
	// language data cannot be initialized.
	ErrEngineUnavailable = errors.New("OCR engine unavailable: Tesseract is not installed or not usable")

	// ErrLanguageUnavailable is returned when the requested language model
	// is not installed for the local engine.
	ErrLanguageUnavailable = errors.New("OCR language model not installed")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured for the cloud engine.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrExtractionFailed is returned when the engine fails to process the image.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmptyText is returned when the engine produced no readable text at all.
	ErrEmptyText = errors.New("image contains no readable text")
)

// OCRError wraps errors with additional context about the extraction failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "ExtractText", "NewTesseractEngine").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure. Never contains
	// image content, only structural facts.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return NewOCRError(op, err, details)
}
