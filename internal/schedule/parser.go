// Package schedule turns raw OCR text from Norwegian work-schedule images
// into structured shift records.
//
// OCR output has no grammar, so extraction is pattern matching over text
// offsets: month/year anchors partition the text into month sections, and a
// weekday-anchored time pattern finds the individual shifts inside them.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"shiftsync/internal/logger"
	"shiftsync/pkg/models"
)

// monthNumbers maps Norwegian month names to their calendar number.
var monthNumbers = map[string]int{
	"januar": 1, "februar": 2, "mars": 3, "april": 4,
	"mai": 5, "juni": 6, "juli": 7, "august": 8,
	"september": 9, "oktober": 10, "november": 11, "desember": 12,
}

// monthYearPattern finds a month name followed by a 4-digit year, the anchor
// that starts a month section.
var monthYearPattern = regexp.MustCompile(
	`(januar|februar|mars|april|mai|juni|juli|august|september|oktober|november|desember)\s+(\d{4})`)

// shiftPattern finds one shift line: weekday, start time, dash, end time and
// the day-of-month. The dotted weekday variants absorb common OCR
// misreadings of "ø". Between the end time and the day token only a short
// run of whitespace is allowed; any other text invalidates the match. The
// spaced-digit alternative (\d\s+\d) must come before \d{1,2}, otherwise a
// day OCR'd as "2 3" would capture just the 2.
var shiftPattern = regexp.MustCompile(
	`(?:mandag|tirsdag|onsdag|torsdag|fredag|l.rdag|.rdag|søndag|s.ndag)\s+(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})\s{0,20}?(\d\s+\d|\d{1,2})`)

// monthSection is one contiguous text span attributed to a single month and
// year. Offsets are byte positions into the lowered source text; sections
// only live for the duration of one Parse call.
type monthSection struct {
	month     int
	year      string
	monthName string
	start     int
	end       int
}

// Parser extracts shift records from raw OCR text. Parsing is deterministic
// given identical text.
type Parser struct {
	log zerolog.Logger
}

// NewParser creates a shift parser.
func NewParser() *Parser {
	return &Parser{
		log: logger.WithComponent("schedule-parser"),
	}
}

// Parse scans OCR text for month anchors and shift lines and returns the
// extracted shifts in text order, deduplicated on (date, start, end).
// Shift confidence starts at 1.0; the confidence scorer adjusts it later.
// Text without any month/year anchor yields an empty result, not an error.
func (p *Parser) Parse(ocrText string) []models.Shift {
	// Lower-case for matching only; digits are unaffected.
	text := strings.ToLower(ocrText)

	sections := p.findMonthSections(text)
	if len(sections) == 0 {
		p.log.Debug().Msg("No month/year anchor found in OCR text")
		return []models.Shift{}
	}

	shifts := []models.Shift{}
	seen := make(map[string]bool)

	for _, match := range shiftPattern.FindAllStringSubmatchIndex(text, -1) {
		groups := submatches(text, match)
		day := groups[4]

		startHour, startMin, okStart := parseTime(groups[0], groups[1])
		endHour, endMin, okEnd := parseTime(groups[2], groups[3])
		if !okStart || !okEnd {
			p.log.Debug().
				Str("start", groups[0]+":"+groups[1]).
				Str("end", groups[2]+":"+groups[3]).
				Msg("Skipping shift with out-of-range time")
			continue
		}

		section := sectionAt(sections, match[0])

		// OCR sometimes splits a two-digit day ("2 3" means 23).
		day = strings.Join(strings.Fields(day), "")
		dayNum, err := strconv.Atoi(day)
		if err != nil || dayNum < 1 || dayNum > 31 {
			p.log.Debug().Str("day", day).Msg("Skipping shift with invalid day")
			continue
		}

		shift := models.Shift{
			Date:       fmt.Sprintf("%02d.%02d.%s", dayNum, section.month, section.year),
			StartTime:  fmt.Sprintf("%02d:%02d", startHour, startMin),
			EndTime:    fmt.Sprintf("%02d:%02d", endHour, endMin),
			Confidence: 1.0,
		}
		shift.ShiftType = Classify(shift.StartTime, shift.EndTime)

		if seen[shift.Key()] {
			p.log.Debug().Str("key", shift.Key()).Msg("Duplicate shift skipped")
			continue
		}
		seen[shift.Key()] = true

		p.log.Debug().
			Str("month", section.monthName).
			Str("date", shift.Date).
			Str("start", shift.StartTime).
			Str("end", shift.EndTime).
			Str("type", shift.ShiftType).
			Msg("Found shift")

		shifts = append(shifts, shift)
	}

	return shifts
}

// findMonthSections partitions the text into month sections. Section i spans
// from the end of anchor i to the start of anchor i+1 (or end of text), so a
// single image can hold several consecutive month tables without the shifts
// being conflated.
func (p *Parser) findMonthSections(text string) []monthSection {
	anchors := monthYearPattern.FindAllStringSubmatchIndex(text, -1)

	sections := make([]monthSection, 0, len(anchors))
	for i, anchor := range anchors {
		name := text[anchor[2]:anchor[3]]
		year := text[anchor[4]:anchor[5]]

		month, ok := monthNumbers[name]
		if !ok {
			p.log.Debug().Str("month", name).Msg("Unknown month name, skipping anchor")
			continue
		}

		end := len(text)
		if i+1 < len(anchors) {
			end = anchors[i+1][0]
		}

		sections = append(sections, monthSection{
			month:     month,
			year:      year,
			monthName: name,
			start:     anchor[1],
			end:       end,
		})

		p.log.Debug().
			Str("month", name).
			Str("year", year).
			Int("start", anchor[1]).
			Int("end", end).
			Msg("Found month section")
	}
	return sections
}

// sectionAt finds the month section containing the given text offset. An
// offset before every section falls back to the first one; defensive only,
// not expected in well-formed input.
func sectionAt(sections []monthSection, offset int) monthSection {
	for _, s := range sections {
		if s.start <= offset && offset < s.end {
			return s
		}
	}
	return sections[0]
}

func parseTime(hour, minute string) (int, int, bool) {
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// submatches returns the capture group texts for one FindAllStringSubmatchIndex match.
func submatches(text string, match []int) []string {
	groups := make([]string, 0, len(match)/2-1)
	for i := 2; i < len(match); i += 2 {
		groups = append(groups, text[match[i]:match[i+1]])
	}
	return groups
}
