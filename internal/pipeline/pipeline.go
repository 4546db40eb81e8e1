// Package pipeline wires the extraction engines together: the local OCR
// path (preprocess, Tesseract, parse, score) and the AI vision path with
// automatic fallback to local OCR on any vision failure.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"shiftsync/internal/confidence"
	"shiftsync/internal/logger"
	"shiftsync/internal/ocr"
	"shiftsync/internal/preprocess"
	"shiftsync/internal/schedule"
	"shiftsync/internal/vision"
	"shiftsync/pkg/models"
)

// Engine names reported in results.
const (
	EngineLocal  = "ocr"
	EngineVision = "vision"
)

// fallbackWarning is prepended when the vision path failed and the result
// came from local OCR instead.
const fallbackWarning = "AI-tolkning feilet, resultatet er basert på vanlig OCR i stedet."

// Result is the full pipeline outcome handed to the caller.
type Result struct {
	models.PipelineResult

	// Warnings are user-facing advisory strings, ordered.
	Warnings []string `json:"warnings"`

	// Engine names the extraction engine that produced the result.
	Engine string `json:"engine"`

	// FallbackUsed is true when the vision path failed and local OCR
	// produced the result instead.
	FallbackUsed bool `json:"fallback_used"`
}

// Service runs schedule images through one of the two extraction paths.
// The service exposes plain blocking calls; offloading onto worker
// goroutines is the caller's concern.
type Service struct {
	extractor ocr.TextExtractor
	visionPrc *vision.Processor
	parser    *schedule.Parser
	log       zerolog.Logger
}

// NewService creates a pipeline service. extractor drives the local path;
// visionPrc enables the vision path. Either may be nil, which disables the
// corresponding path (including the vision fallback).
func NewService(extractor ocr.TextExtractor, visionPrc *vision.Processor) *Service {
	return &Service{
		extractor: extractor,
		visionPrc: visionPrc,
		parser:    schedule.NewParser(),
		log:       logger.WithComponent("pipeline"),
	}
}

// ProcessLocal runs the local OCR path: preprocessing, text extraction,
// shift parsing, confidence scoring and warning generation.
func (s *Service) ProcessLocal(ctx context.Context, imagePath string) (*Result, error) {
	const op = "ProcessLocal"

	if s.extractor == nil {
		return nil, fmt.Errorf("%s: no text extraction engine configured", op)
	}

	img, err := preprocess.Prepare(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	text, err := s.extractor.ExtractText(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	shifts := s.parser.Parse(text)
	confidence.AssignShiftConfidences(shifts, text)
	overall := confidence.Score(text, shifts)

	s.log.Info().
		Int("shifts", len(shifts)).
		Float64("confidence", overall).
		Msg("Local OCR pipeline completed")

	return &Result{
		PipelineResult: models.PipelineResult{
			Shifts:     shifts,
			Confidence: overall,
			RawText:    &text,
		},
		Warnings: confidence.GenerateWarnings(shifts, overall),
		Engine:   EngineLocal,
	}, nil
}

// ProcessVision runs the AI vision path. Any vision failure falls back to
// local OCR transparently, surfacing a single advisory warning; the vision
// error itself is logged, never fatal while the local path can still run.
func (s *Service) ProcessVision(ctx context.Context, imagePath string) (*Result, error) {
	const op = "ProcessVision"

	if s.visionPrc == nil {
		return nil, fmt.Errorf("%s: no vision processor configured", op)
	}

	visionResult, err := s.visionPrc.ProcessImage(ctx, imagePath)
	if err == nil {
		s.log.Info().
			Int("shifts", len(visionResult.Shifts)).
			Float64("confidence", visionResult.Confidence).
			Msg("Vision pipeline completed")

		return &Result{
			PipelineResult: *visionResult,
			Warnings:       confidence.GenerateWarnings(visionResult.Shifts, visionResult.Confidence),
			Engine:         EngineVision,
		}, nil
	}

	s.log.Warn().Err(err).Msg("Vision extraction failed, falling back to local OCR")

	result, localErr := s.ProcessLocal(ctx, imagePath)
	if localErr != nil {
		return nil, fmt.Errorf("%s: vision failed (%v) and fallback failed: %w", op, err, localErr)
	}

	result.FallbackUsed = true
	result.Warnings = append([]string{fallbackWarning}, result.Warnings...)
	return result, nil
}
