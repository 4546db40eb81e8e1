// Package confidence computes reliability estimates for OCR extraction
// results. The scores are independent additive heuristics, cheap and
// auditable, not a statistical model.
package confidence

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"shiftsync/pkg/models"
)

// Scoring factor weights for the overall confidence.
const (
	weightMonthYear   = 0.25
	weightHasShifts   = 0.25
	weightTextQuality = 0.30
	weightConsistency = 0.20
)

var (
	monthYearPattern = regexp.MustCompile(
		`\b(januar|februar|mars|april|mai|juni|juli|august|september|oktober|november|desember)\s+\d{4}`)

	// Characters expected in a clean Norwegian schedule: letters (incl. æøå),
	// digits, whitespace and the date/time separators.
	cleanCharPattern = regexp.MustCompile(`[a-zA-ZæøåÆØÅ0-9\s:.-]`)
)

// Score calculates the overall confidence for a local-OCR extraction from
// four independent factors: a month/year anchor was found (+0.25), at least
// one shift was extracted (+0.25), the ratio of clean characters in the text
// (x0.30), and the fraction of shifts passing structural validation (x0.20).
// The result is clamped to [0, 1].
func Score(ocrText string, shifts []models.Shift) float64 {
	score := 0.0

	if monthYearPattern.MatchString(strings.ToLower(ocrText)) {
		score += weightMonthYear
	}

	if len(shifts) > 0 {
		score += weightHasShifts
	}

	if total := utf8.RuneCountInString(ocrText); total > 0 {
		clean := len(cleanCharPattern.FindAllString(ocrText, -1))
		score += float64(clean) / float64(total) * weightTextQuality
	}

	if len(shifts) > 0 {
		valid := 0
		for _, s := range shifts {
			if ValidateShift(s) {
				valid++
			}
		}
		score += float64(valid) / float64(len(shifts)) * weightConsistency
	}

	return clamp(score)
}

// ValidateShift reports whether a shift is structurally sound: date
// components in range with the year inside a sane window, valid 24-hour
// times, a permitted shift type and a confidence already in [0, 1].
func ValidateShift(shift models.Shift) bool {
	parts := strings.Split(shift.Date, ".")
	if len(parts) != 3 {
		return false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	currentYear := time.Now().Year()
	if day < 1 || day > 31 || month < 1 || month > 12 ||
		year < currentYear-2 || year > currentYear+5 {
		return false
	}

	if _, err := (models.Shift{StartTime: shift.StartTime, EndTime: shift.EndTime}).DurationMinutes(); err != nil {
		return false
	}

	if !models.ValidShiftType(shift.ShiftType) {
		return false
	}

	return shift.Confidence >= 0.0 && shift.Confidence <= 1.0
}

// AssignShiftConfidences assigns each shift its individual confidence,
// starting from a 0.70 base: +0.10 when the date appears verbatim in the
// text, +0.10 when the exact time range is visible, -0.10 for a
// suspiciously short (<4h) and -0.10 for a suspiciously long (>12h)
// duration. Shifts are mutated in place; values are clamped to [0, 1].
// The vision path bypasses this and trusts the model's own estimates.
func AssignShiftConfidences(shifts []models.Shift, ocrText string) {
	squeezed := strings.ReplaceAll(ocrText, " ", "")

	for i := range shifts {
		conf := 0.7

		if strings.Contains(squeezed, strings.ReplaceAll(shifts[i].Date, ".", "")) {
			conf += 0.1
		}

		timePattern := regexp.MustCompile(
			regexp.QuoteMeta(shifts[i].StartTime) + `\s*-\s*` + regexp.QuoteMeta(shifts[i].EndTime))
		if timePattern.MatchString(ocrText) {
			conf += 0.1
		}

		if minutes, err := shifts[i].DurationMinutes(); err == nil {
			if minutes > 0 && minutes < 4*60 {
				conf -= 0.1
			}
			if minutes > 12*60 {
				conf -= 0.1
			}
		}

		shifts[i].Confidence = clamp(conf)
	}
}

// VisionScore is the overall confidence for the vision path: the mean of
// the per-shift confidences the model reported, 0.0 when nothing was found.
func VisionScore(shifts []models.Shift) float64 {
	if len(shifts) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, s := range shifts {
		sum += s.Confidence
	}
	return clamp(sum / float64(len(shifts)))
}

func clamp(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
