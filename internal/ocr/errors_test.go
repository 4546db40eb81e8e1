package ocr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftsync/internal/ocr"
)

func TestOCRError_Error(t *testing.T) {
	err := ocr.NewOCRError("ExtractText", ocr.ErrEmptyText, "blank page")
	assert.Equal(t, "ocr: ExtractText failed: blank page: image contains no readable text", err.Error())

	err = ocr.NewOCRError("ExtractText", ocr.ErrEmptyText, "")
	assert.Equal(t, "ocr: ExtractText failed: image contains no readable text", err.Error())
}

func TestOCRError_Unwrapping(t *testing.T) {
	err := ocr.NewOCRError("NewTesseractEngine", ocr.ErrLanguageUnavailable, "nor")

	assert.ErrorIs(t, err, ocr.ErrLanguageUnavailable)
	assert.NotErrorIs(t, err, ocr.ErrEngineUnavailable)

	var ocrErr *ocr.OCRError
	require.ErrorAs(t, err, &ocrErr)
	assert.Equal(t, "NewTesseractEngine", ocrErr.Op)
}

func TestWrapOCRError(t *testing.T) {
	assert.NoError(t, ocr.WrapOCRError("ExtractText", nil, ""))

	plain := errors.New("boom")
	wrapped := ocr.WrapOCRError("ExtractText", plain, "")
	var ocrErr *ocr.OCRError
	require.ErrorAs(t, wrapped, &ocrErr)
	assert.ErrorIs(t, wrapped, plain)

	// Already-wrapped errors pass through unchanged.
	rewrapped := ocr.WrapOCRError("Other", wrapped, "")
	assert.Same(t, wrapped, rewrapped)
}
