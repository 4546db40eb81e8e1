package vision

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sashabaranov/go-openai"
)

// Common vision processing errors
var (
	// ErrMissingAPIKey is returned at construction time when no OpenAI API
	// key is configured. The engine refuses to initialize rather than fail
	// lazily mid-call.
	ErrMissingAPIKey = errors.New("OpenAI API key is required for vision processing")

	// ErrEmptyResponse is returned when the model produced no content at all.
	// Not retryable.
	ErrEmptyResponse = errors.New("vision API returned empty response")

	// ErrInvalidJSON is returned when the model response is not valid JSON.
	// Not retryable; a non-JSON response is a hard failure, not salvageable.
	ErrInvalidJSON = errors.New("vision API returned invalid JSON")

	// ErrAPIUnavailable is returned after all retries of a transient failure
	// are exhausted. Distinguishable so the caller can fall back to local OCR.
	ErrAPIUnavailable = errors.New("vision API unavailable after retries")
)

// VisionError wraps errors with context about the vision processing failure.
// Details reference only structural facts, never image content.
type VisionError struct {
	Op      string
	Err     error
	Details string
}

func (e *VisionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("vision: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("vision: %s failed: %v", e.Op, e.Err)
}

func (e *VisionError) Unwrap() error {
	return e.Err
}

func (e *VisionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newVisionError(op string, err error, details string) *VisionError {
	return &VisionError{Op: op, Err: err, Details: details}
}

// isTransient reports whether an API error belongs to the retryable classes:
// rate limiting, timeouts and connection failures. Malformed responses and
// validation errors are never transient.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
