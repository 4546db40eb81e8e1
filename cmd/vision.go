package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shiftsync/internal/logger"
	"shiftsync/internal/ocr"
	"shiftsync/internal/pipeline"
	"shiftsync/internal/vision"
)

var visionCmd = &cobra.Command{
	Use:   "vision [image-file]",
	Short: "Extract shifts from a schedule image using AI vision",
	Long: `Process a Norwegian work-schedule image with a multimodal AI model.
The model reads the schedule directly from the image under a strict JSON
contract and reports a per-shift confidence.

When the vision call fails (rate limits, timeouts, malformed responses),
the command transparently falls back to the local OCR pipeline and adds
an advisory warning to the result. Use --no-fallback to disable that.

Requires OPENAI_API_KEY in the environment.`,
	Example: `  # Extract shifts with AI vision, falling back to local OCR on failure
  shiftsync vision vaktplan.jpg

  # Pick a specific model and save as JSON
  shiftsync vision vaktplan.jpg --model gpt-4o -o shifts.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVision,
}

func init() {
	rootCmd.AddCommand(visionCmd)

	visionCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	visionCmd.Flags().String("model", "", "Vision model name (default: $OPENAI_MODEL or gpt-4o)")
	visionCmd.Flags().String("language", "nor", "OCR language code for the fallback path")
	visionCmd.Flags().Bool("no-fallback", false, "Fail instead of falling back to local OCR")
	visionCmd.Flags().Int("timeout", 180, "Processing timeout in seconds")
}

func runVision(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("vision")

	outputPath, _ := cmd.Flags().GetString("output")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	noFallback, _ := cmd.Flags().GetBool("no-fallback")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]
	if err := validateImageFile(imagePath, log); err != nil {
		return err
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required for vision processing")
	}
	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}

	processor, err := vision.NewProcessor(apiKey, model)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create vision processor")
		return fmt.Errorf("failed to create vision processor: %w", err)
	}
	defer processor.Close()

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	log.Info().
		Str("file", imagePath).
		Bool("fallback", !noFallback).
		Msg("Starting AI vision processing")

	startTime := time.Now()

	var result *pipeline.Result
	if noFallback {
		svc := pipeline.NewService(nil, processor)
		result, err = svc.ProcessVision(ctx, imagePath)
	} else {
		// The fallback path needs a local engine. A missing Tesseract install
		// only disables the fallback, it does not block the vision attempt.
		var extractor ocr.TextExtractor
		if engine, tessErr := ocr.NewTesseractEngine(language); tessErr != nil {
			log.Warn().Err(tessErr).Msg("Local OCR unavailable, continuing without fallback")
		} else {
			extractor = engine
			defer func() {
				if closeErr := engine.Close(); closeErr != nil {
					log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
				}
			}()
		}
		svc := pipeline.NewService(extractor, processor)
		result, err = svc.ProcessVision(ctx, imagePath)
	}
	if err != nil {
		log.Error().Err(err).Msg("Vision processing failed")
		return fmt.Errorf("processing failed: %w", err)
	}

	log.Info().
		Int("shifts", len(result.Shifts)).
		Float64("confidence", result.Confidence).
		Bool("fallback_used", result.FallbackUsed).
		Dur("duration", time.Since(startTime)).
		Msg("Processing completed")

	return outputResult(result, outputPath, log)
}
