// Package vision extracts shift records directly from schedule images using
// a multimodal OpenAI model under a strict JSON contract. It is the primary
// extraction path when configured; local OCR serves as the fallback.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"shiftsync/internal/confidence"
	"shiftsync/internal/logger"
	"shiftsync/pkg/models"
)

const (
	// maxRawSize is the image file size above which the image is recompressed
	// before upload, to keep token cost bounded.
	maxRawSize = 2 * 1024 * 1024

	// maxDimension is the largest image dimension the "high" detail setting
	// makes use of; bigger images are downscaled.
	maxDimension = 2048

	// defaultShiftConfidence is assumed when the model omits a per-shift
	// confidence.
	defaultShiftConfidence = 0.85

	// defaultMaxAttempts bounds retries of transient API failures.
	defaultMaxAttempts = 3
)

// Retry backoff tuning, shortened in tests.
var (
	retryBaseDelay = 2 * time.Second
	retryMaxDelay  = 30 * time.Second
)

// mimeTypes maps supported image file extensions to their MIME types.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Processor extracts shifts from schedule images via the OpenAI vision API.
// It owns its HTTP client; call Close when the processor is no longer needed.
type Processor struct {
	client      *openai.Client
	httpClient  *http.Client
	model       string
	maxAttempts int
	log         zerolog.Logger
}

// visionResponse is the JSON contract the model must honor.
type visionResponse struct {
	Shifts []json.RawMessage `json:"shifts"`
	Notes  *string           `json:"notes"`
}

// NewProcessor creates a vision processor. It refuses to initialize without
// an API key.
func NewProcessor(apiKey, model string) (*Processor, error) {
	const op = "NewProcessor"

	if apiKey == "" {
		return nil, newVisionError(op, ErrMissingAPIKey, "")
	}
	if model == "" {
		model = "gpt-4o"
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = httpClient

	return &Processor{
		client:      openai.NewClientWithConfig(cfg),
		httpClient:  httpClient,
		model:       model,
		maxAttempts: defaultMaxAttempts,
		log:         logger.WithComponent("vision-processor"),
	}, nil
}

// NewProcessorWithClient creates a processor with an explicit client (for testing).
func NewProcessorWithClient(client *openai.Client, model string) *Processor {
	return &Processor{
		client:      client,
		model:       model,
		maxAttempts: defaultMaxAttempts,
		log:         logger.WithComponent("vision-processor"),
	}
}

// ProcessImage sends the image to the vision model and returns the parsed
// shifts with the model's own confidence estimates. RawText is nil on this
// path; there is no intermediate OCR text.
func (p *Processor) ProcessImage(ctx context.Context, imagePath string) (*models.PipelineResult, error) {
	const op = "ProcessImage"

	imageData, mimeType, err := p.encodeImage(imagePath)
	if err != nil {
		return nil, newVisionError(op, err, "failed to encode image")
	}

	p.log.Debug().
		Int("base64_length", len(imageData)).
		Str("mime_type", mimeType).
		Msg("Image encoded for vision API")

	data, err := p.callWithRetry(ctx, imageData, mimeType)
	if err != nil {
		return nil, err
	}

	if data.Notes != nil && *data.Notes != "" {
		p.log.Info().Str("notes", *data.Notes).Msg("Vision API notes")
	}

	shifts := p.decodeShifts(data.Shifts)

	return &models.PipelineResult{
		Shifts:     shifts,
		Confidence: confidence.VisionScore(shifts),
		RawText:    nil,
	}, nil
}

// Close releases the processor's network resources.
func (p *Processor) Close() {
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}
}

// callWithRetry calls the vision API, retrying transient failures (rate
// limit, timeout, connection errors) with exponential backoff. Malformed or
// empty responses surface immediately without retry.
func (p *Processor) callWithRetry(ctx context.Context, imageData, mimeType string) (*visionResponse, error) {
	const op = "callWithRetry"

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := retryBaseDelay << (attempt - 2)
			if delay > retryMaxDelay {
				delay = retryMaxDelay
			}
			p.log.Warn().
				Int("attempt", attempt).
				Int("max_attempts", p.maxAttempts).
				Dur("delay", delay).
				Err(lastErr).
				Msg("Retrying vision API call after transient failure")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, newVisionError(op, ctx.Err(), "canceled while waiting for retry")
			}
		}

		data, err := p.callVisionAPI(ctx, imageData, mimeType)
		if err == nil {
			return data, nil
		}

		var visionErr *VisionError
		if errors.As(err, &visionErr) {
			// Typed failures (empty response, invalid JSON) are final.
			return nil, err
		}

		if !isTransient(err) {
			return nil, newVisionError(op, err, "non-transient API failure")
		}
		lastErr = err
	}

	return nil, newVisionError(op, ErrAPIUnavailable,
		fmt.Sprintf("all %d attempts failed, last error: %v", p.maxAttempts, lastErr))
}

// callVisionAPI performs one chat completion request and parses the strict
// JSON body.
func (p *Processor) callVisionAPI(ctx context.Context, imageData, mimeType string) (*visionResponse, error) {
	const op = "callVisionAPI"

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   4000,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemMessage,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: userPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    fmt.Sprintf("data:%s;base64,%s", mimeType, imageData),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	if resp.Usage.TotalTokens > 0 {
		p.log.Info().
			Int("prompt_tokens", resp.Usage.PromptTokens).
			Int("completion_tokens", resp.Usage.CompletionTokens).
			Int("total_tokens", resp.Usage.TotalTokens).
			Msg("Vision API token usage")
	}

	if len(resp.Choices) == 0 {
		return nil, newVisionError(op, ErrEmptyResponse, "no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, newVisionError(op, ErrEmptyResponse, "")
	}

	var data visionResponse
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, newVisionError(op, ErrInvalidJSON, err.Error())
	}

	return &data, nil
}

// decodeShifts converts the raw shift entries into validated Shift records.
// Malformed entries are skipped with a logged warning; they never abort the
// batch.
func (p *Processor) decodeShifts(raw []json.RawMessage) []models.Shift {
	shifts := []models.Shift{}
	for _, entry := range raw {
		shift, err := decodeShift(entry)
		if err != nil {
			p.log.Warn().Err(err).Msg("Skipping invalid shift from vision response")
			continue
		}

		p.log.Debug().
			Str("date", shift.Date).
			Str("start", shift.StartTime).
			Str("end", shift.EndTime).
			Str("type", shift.ShiftType).
			Float64("confidence", shift.Confidence).
			Msg("Vision shift")

		shifts = append(shifts, shift)
	}
	return shifts
}

// decodeShift validates field presence and coerces types for one shift
// entry. The model occasionally emits confidence as a string; both forms
// are accepted and clamped to [0, 1], defaulting to 0.85 when absent.
func decodeShift(entry json.RawMessage) (models.Shift, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(entry, &fields); err != nil {
		return models.Shift{}, fmt.Errorf("shift entry is not an object: %w", err)
	}

	shift := models.Shift{
		Date:       getString(fields, "date"),
		StartTime:  getString(fields, "start_time"),
		EndTime:    getString(fields, "end_time"),
		ShiftType:  getString(fields, "shift_type"),
		Confidence: defaultShiftConfidence,
	}

	if shift.Date == "" || shift.StartTime == "" || shift.EndTime == "" || shift.ShiftType == "" {
		return models.Shift{}, fmt.Errorf("shift entry missing required fields")
	}

	switch v := fields["confidence"].(type) {
	case float64:
		shift.Confidence = clampConfidence(v)
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(v, "%f", &parsed); err == nil {
			shift.Confidence = clampConfidence(parsed)
		}
	case nil:
		// Keep the default.
	}

	if !confidence.ValidateShift(shift) {
		return models.Shift{}, fmt.Errorf("shift entry failed structural validation (date %q)", shift.Date)
	}

	return shift, nil
}

// encodeImage reads the image and returns it base64-encoded with its MIME
// type, recompressing oversized files to bound upload and token cost.
func (p *Processor) encodeImage(imagePath string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(imagePath))
	mimeType, ok := mimeTypes[ext]
	if !ok {
		mimeType = "image/jpeg"
	}

	info, err := os.Stat(imagePath)
	if err != nil {
		return "", "", fmt.Errorf("stat image: %w", err)
	}

	if info.Size() > maxRawSize {
		p.log.Info().
			Int64("size", info.Size()).
			Msg("Compressing large image before vision API upload")

		img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
		if err != nil {
			return "", "", fmt.Errorf("open image: %w", err)
		}
		bounds := img.Bounds()
		if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
			img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
			return "", "", fmt.Errorf("compress image: %w", err)
		}
		return base64.StdEncoding.EncodeToString(buf.Bytes()), "image/jpeg", nil
	}

	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return "", "", fmt.Errorf("read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), mimeType, nil
}

func clampConfidence(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

func getString(m map[string]interface{}, key string) string {
	if value, exists := m[key]; exists && value != nil {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}
