package confidence

import (
	"fmt"

	"shiftsync/pkg/models"
)

// maxDurationWarnings caps the number of per-shift duration warnings so a
// badly OCR'd table cannot flood the user.
const maxDurationWarnings = 5

// GenerateWarnings turns confidence and duration anomalies into user-facing
// advisory strings, in Norwegian, ordered: overall confidence first, then
// the low-confidence aggregate, then per-shift duration anomalies capped at
// maxDurationWarnings with a suppression summary when more exist.
func GenerateWarnings(shifts []models.Shift, overallConfidence float64) []string {
	var warnings []string

	if overallConfidence < 0.5 {
		warnings = append(warnings, "Lav sikkerhet på OCR-resultat. Vennligst dobbelsjekk alle vakter.")
	} else if overallConfidence < 0.7 {
		warnings = append(warnings, "Moderat sikkerhet. Sjekk spesielt datoer og klokkeslett.")
	}

	lowConfidence := 0
	for _, s := range shifts {
		if s.Confidence < 0.6 {
			lowConfidence++
		}
	}
	if lowConfidence > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d vakt(er) har lav sikkerhet. Disse er markert med gul bakgrunn.", lowConfidence))
	}

	emitted := 0
	suspicious := 0
	for _, s := range shifts {
		minutes, err := s.DurationMinutes()
		if err != nil {
			continue
		}
		hours := float64(minutes) / 60.0

		short := minutes > 0 && minutes < 4*60
		long := minutes > 12*60
		if !short && !long {
			continue
		}
		suspicious++
		if emitted >= maxDurationWarnings {
			continue
		}
		emitted++
		if short {
			warnings = append(warnings, fmt.Sprintf(
				"Vakt %s virker veldig kort (%.1f timer). Sjekk at tidene er korrekte.", s.Date, hours))
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"Vakt %s virker veldig lang (%.1f timer). Sjekk at tidene er korrekte.", s.Date, hours))
		}
	}

	if remaining := suspicious - emitted; remaining > 0 {
		warnings = append(warnings, fmt.Sprintf("...og %d andre vakt(er) med uvanlig varighet.", remaining))
	}

	return warnings
}
