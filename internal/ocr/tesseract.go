package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements TextExtractor using a local Tesseract install.
//
// The engine is configured for schedule tables: uniform-block page
// segmentation and the Norwegian language model by default.
type TesseractEngine struct {
	client   *gosseract.Client
	language string
}

// NewTesseractEngine creates a local OCR engine for the given language code
// (e.g. "nor"). It refuses to initialize when Tesseract or the requested
// language model is unavailable.
func NewTesseractEngine(language string) (*TesseractEngine, error) {
	const op = "NewTesseractEngine"

	if language == "" {
		language = "nor"
	}

	available, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, NewOCRError(op, ErrEngineUnavailable, err.Error())
	}
	if !containsLanguage(available, language) {
		return nil, NewOCRError(op, ErrLanguageUnavailable,
			fmt.Sprintf("language %q not in installed set %v", language, available))
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		_ = client.Close()
		return nil, NewOCRError(op, ErrLanguageUnavailable, err.Error())
	}
	// Schedule tables read best as one uniform block of text.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		_ = client.Close()
		return nil, NewOCRError(op, ErrEngineUnavailable, err.Error())
	}

	return &TesseractEngine{
		client:   client,
		language: language,
	}, nil
}

// ExtractText runs Tesseract on the (preprocessed) image and returns raw text.
func (t *TesseractEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	const op = "ExtractText"

	if err := ctx.Err(); err != nil {
		return "", WrapOCRError(op, err, "context done before extraction")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", NewOCRError(op, err, "failed to encode image for Tesseract")
	}

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", NewOCRError(op, ErrExtractionFailed, err.Error())
	}

	text, err := t.client.Text()
	if err != nil {
		return "", NewOCRError(op, ErrExtractionFailed, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return "", NewOCRError(op, ErrEmptyText, "")
	}

	return text, nil
}

// Close releases the underlying Tesseract client.
func (t *TesseractEngine) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

func containsLanguage(available []string, lang string) bool {
	for _, l := range available {
		if l == lang {
			return true
		}
	}
	return false
}
