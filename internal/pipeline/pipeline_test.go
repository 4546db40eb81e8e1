package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftsync/internal/pipeline"
	"shiftsync/internal/vision"
	"shiftsync/pkg/models"
)

// stubExtractor returns canned OCR text without touching Tesseract.
type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractText(_ context.Context, _ image.Image) (string, error) {
	return s.text, s.err
}

func (s *stubExtractor) Close() error { return nil }

func writeTestImage(t *testing.T) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	path := filepath.Join(t.TempDir(), "plan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func scheduleText() string {
	return "desember 2026\nmandag 07:00 - 15:00\n1"
}

func newVisionProcessor(t *testing.T, handler http.HandlerFunc) *vision.Processor {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return vision.NewProcessorWithClient(openai.NewClientWithConfig(cfg), "gpt-4o")
}

func visionSuccessBody(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   "gpt-4o",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestProcessLocal(t *testing.T) {
	svc := pipeline.NewService(&stubExtractor{text: scheduleText()}, nil)

	result, err := svc.ProcessLocal(context.Background(), writeTestImage(t))

	require.NoError(t, err)
	assert.Equal(t, pipeline.EngineLocal, result.Engine)
	assert.False(t, result.FallbackUsed)
	require.Len(t, result.Shifts, 1)
	assert.Equal(t, "01.12.2026", result.Shifts[0].Date)
	assert.Equal(t, models.ShiftTypeEarly, result.Shifts[0].ShiftType)
	assert.InDelta(t, 1.0, result.Confidence, 0.001)
	assert.Empty(t, result.Warnings)
	require.NotNil(t, result.RawText)
	assert.Equal(t, scheduleText(), *result.RawText)
}

func TestProcessLocal_ExtractorError(t *testing.T) {
	extractorErr := errors.New("engine crashed")
	svc := pipeline.NewService(&stubExtractor{err: extractorErr}, nil)

	_, err := svc.ProcessLocal(context.Background(), writeTestImage(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, extractorErr)
}

func TestProcessLocal_NoExtractorConfigured(t *testing.T) {
	svc := pipeline.NewService(nil, nil)

	_, err := svc.ProcessLocal(context.Background(), writeTestImage(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text extraction engine")
}

func TestProcessLocal_MissingImage(t *testing.T) {
	svc := pipeline.NewService(&stubExtractor{text: scheduleText()}, nil)

	_, err := svc.ProcessLocal(context.Background(), "/nonexistent/plan.png")

	assert.Error(t, err)
}

func TestProcessVision_Success(t *testing.T) {
	payload := `{"shifts": [{"date": "05.12.2026", "start_time": "22:00", "end_time": "06:00", "shift_type": "natt", "confidence": 0.92}], "notes": null}`
	processor := newVisionProcessor(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(visionSuccessBody(payload))
	})

	svc := pipeline.NewService(&stubExtractor{text: scheduleText()}, processor)

	result, err := svc.ProcessVision(context.Background(), writeTestImage(t))

	require.NoError(t, err)
	assert.Equal(t, pipeline.EngineVision, result.Engine)
	assert.False(t, result.FallbackUsed)
	require.Len(t, result.Shifts, 1)
	assert.Equal(t, "05.12.2026", result.Shifts[0].Date)
	assert.InDelta(t, 0.92, result.Confidence, 0.001)
	assert.Nil(t, result.RawText)
}

func TestProcessVision_FallsBackToLocalOCR(t *testing.T) {
	processor := newVisionProcessor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid request", "type": "invalid_request_error"}}`))
	})

	svc := pipeline.NewService(&stubExtractor{text: scheduleText()}, processor)

	result, err := svc.ProcessVision(context.Background(), writeTestImage(t))

	require.NoError(t, err)
	assert.Equal(t, pipeline.EngineLocal, result.Engine)
	assert.True(t, result.FallbackUsed)
	require.Len(t, result.Shifts, 1)
	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, "AI-tolkning feilet, resultatet er basert på vanlig OCR i stedet.", result.Warnings[0])
}

func TestProcessVision_NoProcessorConfigured(t *testing.T) {
	svc := pipeline.NewService(&stubExtractor{text: scheduleText()}, nil)

	_, err := svc.ProcessVision(context.Background(), writeTestImage(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no vision processor")
}

func TestProcessVision_FallbackAlsoFails(t *testing.T) {
	processor := newVisionProcessor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid request", "type": "invalid_request_error"}}`))
	})

	svc := pipeline.NewService(nil, processor)

	_, err := svc.ProcessVision(context.Background(), writeTestImage(t))

	assert.Error(t, err)
}
