package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"shiftsync/internal/logger"
	"shiftsync/internal/ocr"
	"shiftsync/internal/pipeline"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file]",
	Short: "Extract shifts from a schedule image using local OCR",
	Long: `Process a Norwegian work-schedule image with the local OCR pipeline:
image preprocessing (grayscale, upscaling, noise removal, adaptive
binarization), Tesseract text extraction, shift parsing, classification
and confidence scoring.

The local engine requires a Tesseract installation with the Norwegian
language model. Alternatively, --engine google uses Google Cloud Vision
document text detection; that requires GOOGLE_APPLICATION_CREDENTIALS or
GOOGLE_CREDENTIALS in the environment.`,
	Example: `  # Extract shifts from a schedule photo
  shiftsync scan vaktplan.jpg

  # Save the result as JSON
  shiftsync scan vaktplan.jpg -o shifts.json

  # Use the cloud text engine instead of local Tesseract
  shiftsync scan vaktplan.jpg --engine google`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	scanCmd.Flags().String("engine", "tesseract", "Text extraction engine: tesseract or google")
	scanCmd.Flags().String("language", "nor", "OCR language code")
	scanCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	outputPath, _ := cmd.Flags().GetString("output")
	engineName, _ := cmd.Flags().GetString("engine")
	language, _ := cmd.Flags().GetString("language")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]
	if err := validateImageFile(imagePath, log); err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	extractor, err := createExtractor(ctx, engineName, language, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := extractor.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
		}
	}()

	log.Info().
		Str("file", imagePath).
		Str("engine", engineName).
		Str("language", language).
		Msg("Starting local OCR processing")

	startTime := time.Now()
	result, err := pipeline.NewService(extractor, nil).ProcessLocal(ctx, imagePath)
	if err != nil {
		log.Error().Err(err).Msg("Local OCR processing failed")
		return fmt.Errorf("processing failed: %w", err)
	}

	log.Info().
		Int("shifts", len(result.Shifts)).
		Float64("confidence", result.Confidence).
		Dur("duration", time.Since(startTime)).
		Msg("Processing completed")

	return outputResult(result, outputPath, log)
}

// createExtractor builds the requested text extraction engine.
func createExtractor(ctx context.Context, engineName, language string, log zerolog.Logger) (ocr.TextExtractor, error) {
	switch engineName {
	case "tesseract":
		extractor, err := ocr.NewTesseractEngine(language)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Tesseract engine")
			return nil, fmt.Errorf("failed to create Tesseract engine "+
				"(is Tesseract installed with the %q language model?): %w", language, err)
		}
		return extractor, nil
	case "google":
		extractor, err := ocr.NewGoogleVisionEngine(ctx, language)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Google Vision engine")
			return nil, fmt.Errorf("failed to create Google Vision engine "+
				"(set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS): %w", err)
		}
		return extractor, nil
	default:
		return nil, fmt.Errorf("unknown engine %q: expected tesseract or google", engineName)
	}
}

// validateImageFile checks that the path exists, is a regular non-empty file
// and carries a supported image extension.
func validateImageFile(imagePath string, log zerolog.Logger) error {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", imagePath).Msg("Image file not found")
			return fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", imagePath).Msg("Permission denied accessing image file")
			return fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().Str("file", imagePath).Msg("Path is not a regular file")
		return fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	if fileInfo.Size() == 0 {
		log.Error().Str("file", imagePath).Msg("Image file is empty")
		return fmt.Errorf("image file is empty: %s", imagePath)
	}

	lower := strings.ToLower(imagePath)
	supported := false
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".tif", ".tiff", ".bmp"} {
		if strings.HasSuffix(lower, ext) {
			supported = true
			break
		}
	}
	if !supported {
		log.Warn().Str("file", imagePath).Msg("File does not have a common image extension")
	}

	return nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// outputResult writes the pipeline result as indented JSON to the output
// path or stdout.
func outputResult(result *pipeline.Result, outputPath string, log zerolog.Logger) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal result")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(data)).
			Msg("Result written to file")
		return nil
	}

	if _, err := os.Stdout.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}
