package schedule

import (
	"strconv"
	"strings"

	"shiftsync/pkg/models"
)

// Classify maps a shift's start and end time (HH:MM) to its type. Bands are
// half-open on the start hour: [6,12) tidlig, [12,16) mellom, [16,22) kveld,
// otherwise natt. A late or very early start whose end is at or before 10:00
// is natt regardless of band, since it plausibly spans midnight.
func Classify(startTime, endTime string) string {
	startHour := hourOf(startTime)
	endHour := hourOf(endTime)

	if (startHour >= 20 || startHour < 6) && endHour <= 10 {
		return models.ShiftTypeNight
	}

	switch {
	case startHour >= 6 && startHour < 12:
		return models.ShiftTypeEarly
	case startHour >= 12 && startHour < 16:
		return models.ShiftTypeMid
	case startHour >= 16 && startHour < 22:
		return models.ShiftTypeEvening
	default:
		return models.ShiftTypeNight
	}
}

func hourOf(hhmm string) int {
	h, err := strconv.Atoi(strings.SplitN(hhmm, ":", 2)[0])
	if err != nil {
		return 0
	}
	return h
}
