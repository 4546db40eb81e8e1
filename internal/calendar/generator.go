// Package calendar serializes extracted shifts into an iCalendar (.ics)
// file that schedule owners can import into their calendar app.
package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"

	"shiftsync/internal/logger"
	"shiftsync/pkg/models"
)

const (
	dateTimeLayout = "02.01.2006 15:04"
	timeLayout     = "15:04"

	// maxOwnerNameLength caps the sanitized owner name used in calendar fields.
	maxOwnerNameLength = 50

	defaultOwnerName = "Ansatt"
)

var (
	angleBrackets = regexp.MustCompile(`[<>]`)
	controlChars  = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
)

// Generator builds .ics calendars from shift lists.
type Generator struct {
	log zerolog.Logger
}

// NewGenerator creates a calendar generator.
func NewGenerator() *Generator {
	return &Generator{
		log: logger.WithComponent("calendar"),
	}
}

// Generate produces the iCalendar serialization of the shifts. The owner
// name is sanitized before use in any calendar field. Shifts whose date or
// times fail to parse are skipped with a logged warning.
func (g *Generator) Generate(shifts []models.Shift, ownerName string) (string, error) {
	owner := SanitizeText(ownerName, maxOwnerNameLength)
	if owner == "" {
		owner = defaultOwnerName
	}

	cal := ics.NewCalendar()
	cal.SetProductId("-//ShiftSync//OCR to iCal//NO")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(fmt.Sprintf("Vakter - %s", owner))

	for _, shift := range shifts {
		if err := g.addEvent(cal, shift, owner); err != nil {
			g.log.Warn().Err(err).Str("date", shift.Date).Msg("Skipping shift in calendar export")
		}
	}

	return cal.Serialize(), nil
}

func (g *Generator) addEvent(cal *ics.Calendar, shift models.Shift, owner string) error {
	start, end, err := EventWindow(shift)
	if err != nil {
		return err
	}

	event := cal.AddEvent(fmt.Sprintf("%s-%s@shiftsync.no", start.Format(time.RFC3339), owner))
	event.SetSummary(fmt.Sprintf("%s jobber %s", owner, shift.ShiftType))
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetDescription(fmt.Sprintf(
		"Vakt importert fra vaktplan-bilde via OCR\nTid: %s - %s\nType: %s",
		shift.StartTime, shift.EndTime, capitalize(shift.ShiftType)))

	return nil
}

// EventWindow computes the concrete start and end timestamps for a shift.
// Shifts that end at or before their start time are treated as crossing
// midnight and end on the following day.
func EventWindow(shift models.Shift) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateTimeLayout, fmt.Sprintf("%s %s", shift.Date, shift.StartTime), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse shift start: %w", err)
	}
	endClock, err := time.ParseInLocation(timeLayout, shift.EndTime, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse shift end: %w", err)
	}

	end := time.Date(start.Year(), start.Month(), start.Day(),
		endClock.Hour(), endClock.Minute(), 0, 0, time.Local)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// SanitizeText strips markup characters and control characters from text
// destined for calendar fields, normalizes whitespace and truncates to
// maxLength.
func SanitizeText(text string, maxLength int) string {
	clean := angleBrackets.ReplaceAllString(text, "")
	clean = controlChars.ReplaceAllString(clean, "")
	clean = strings.Join(strings.Fields(clean), " ")

	runes := []rune(clean)
	if len(runes) > maxLength {
		clean = string(runes[:maxLength-3]) + "..."
	}
	return strings.TrimSpace(clean)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
