package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Shift types, based on the Norwegian shift taxonomy (tidlig/mellom/kveld/natt).
const (
	ShiftTypeEarly   = "tidlig" // 06:00 - 11:59
	ShiftTypeMid     = "mellom" // 12:00 - 15:59
	ShiftTypeEvening = "kveld"  // 16:00 - 21:59
	ShiftTypeNight   = "natt"   // 22:00 - 05:59, may cross midnight
)

// ShiftTypes lists all permitted shift type values.
var ShiftTypes = []string{ShiftTypeEarly, ShiftTypeMid, ShiftTypeEvening, ShiftTypeNight}

// Shift represents a single scheduled work period extracted from a schedule image.
type Shift struct {
	// Date in DD.MM.YYYY format (zero-padded)
	Date string `json:"date"`

	// StartTime in HH:MM 24-hour format (zero-padded)
	StartTime string `json:"start_time"`

	// EndTime in HH:MM 24-hour format. May be numerically before StartTime,
	// which means the shift crosses midnight. That is a normal state, not an error.
	EndTime string `json:"end_time"`

	// ShiftType is one of ShiftTypes.
	ShiftType string `json:"shift_type"`

	// Confidence is a reliability estimate in [0.0, 1.0].
	Confidence float64 `json:"confidence"`
}

// PipelineResult is what either extraction engine returns to its caller.
type PipelineResult struct {
	// Shifts extracted from the image, in text order.
	Shifts []Shift `json:"shifts"`

	// Confidence is the overall pipeline confidence in [0.0, 1.0].
	Confidence float64 `json:"confidence"`

	// RawText is the raw OCR output for the local path, nil for the vision path.
	RawText *string `json:"raw_text,omitempty"`
}

// Key returns the deduplication key for a shift: identical (date, start, end)
// triples must collapse to one shift regardless of how often OCR saw them.
func (s Shift) Key() string {
	return fmt.Sprintf("%s_%s_%s", s.Date, s.StartTime, s.EndTime)
}

// DurationMinutes returns the shift length in minutes, treating an end time
// numerically before the start time as a midnight crossing (modulo 24h).
// Returns an error if either time is not valid HH:MM.
func (s Shift) DurationMinutes() (int, error) {
	start, err := parseMinutes(s.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := parseMinutes(s.EndTime)
	if err != nil {
		return 0, err
	}
	const day = 24 * 60
	return ((end - start) % day + day) % day, nil
}

func parseMinutes(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", hhmm, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", hhmm, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", hhmm)
	}
	return hour*60 + minute, nil
}

// ValidShiftType reports whether t is one of the permitted shift types.
func ValidShiftType(t string) bool {
	for _, known := range ShiftTypes {
		if t == known {
			return true
		}
	}
	return false
}
