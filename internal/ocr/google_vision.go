package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// GoogleVisionEngine implements TextExtractor using Google Cloud Vision
// document text detection. It serves deployments where a local Tesseract
// install is not available; the extracted text feeds the same parser.
type GoogleVisionEngine struct {
	client   *vision.ImageAnnotatorClient
	language string
}

// NewGoogleVisionEngine creates a cloud OCR engine with credentials from
// environment. It expects either GOOGLE_APPLICATION_CREDENTIALS path or
// GOOGLE_CREDENTIALS JSON in env.
func NewGoogleVisionEngine(ctx context.Context, language string) (*GoogleVisionEngine, error) {
	const op = "NewGoogleVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	if language == "" {
		language = "nor"
	}

	return &GoogleVisionEngine{
		client:   client,
		language: language,
	}, nil
}

// ExtractText runs document text detection on the image and returns raw text.
func (g *GoogleVisionEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	const op = "ExtractText"

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", NewOCRError(op, err, "failed to encode image for Vision API")
	}

	res, err := g.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:        &visionpb.Image{Content: buf.Bytes()},
			ImageContext: &visionpb.ImageContext{LanguageHints: []string{g.language}},
			Features:     []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", NewOCRError(op, ErrExtractionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(res.GetResponses()) == 0 {
		return "", NewOCRError(op, ErrExtractionFailed, "Vision API returned no responses")
	}
	if apiErr := res.GetResponses()[0].GetError(); apiErr != nil {
		return "", NewOCRError(op, ErrExtractionFailed, fmt.Sprintf("Vision API call failed: %v", apiErr.GetMessage()))
	}
	annotation := res.GetResponses()[0].GetFullTextAnnotation()

	if annotation == nil || strings.TrimSpace(annotation.Text) == "" {
		return "", NewOCRError(op, ErrEmptyText, "")
	}

	return annotation.Text, nil
}

// Close closes the underlying Vision client.
func (g *GoogleVisionEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
