// Package ocr provides raw text extraction from preprocessed schedule images.
//
// Two engines implement the same contract: a local Tesseract engine
// (default, requires an installed libtesseract with the Norwegian language
// model) and a Google Cloud Vision engine for deployments without a local
// Tesseract install.
//
// Required Environment Variables (cloud engine only):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Neither engine parses the text; schedule parsing lives in
// internal/schedule.
package ocr

import (
	"context"
	"image"
)

// TextExtractor is the contract for raw text extraction from an image.
// Implementations must fail at construction time when misconfigured
// (missing engine, missing language model, missing credentials) rather
// than lazily mid-call.
type TextExtractor interface {
	// ExtractText runs character recognition on the image and returns the
	// raw text. Failure propagates as a distinct error, never as empty text.
	ExtractText(ctx context.Context, img image.Image) (string, error)

	// Close releases the engine's resources.
	Close() error
}
