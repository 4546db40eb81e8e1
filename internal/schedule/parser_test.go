package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftsync/internal/schedule"
	"shiftsync/pkg/models"
)

func TestParse_SingleShift(t *testing.T) {
	text := "Vaktplan\ndesember 2025\nmandag 07:00 - 15:00\n1"

	shifts := schedule.NewParser().Parse(text)

	require.Len(t, shifts, 1)
	assert.Equal(t, "01.12.2025", shifts[0].Date)
	assert.Equal(t, "07:00", shifts[0].StartTime)
	assert.Equal(t, "15:00", shifts[0].EndTime)
	assert.Equal(t, models.ShiftTypeEarly, shifts[0].ShiftType)
	assert.Equal(t, 1.0, shifts[0].Confidence)
}

func TestParse_NoMonthAnchor(t *testing.T) {
	shifts := schedule.NewParser().Parse("mandag 07:00 - 15:00\n1")

	assert.NotNil(t, shifts)
	assert.Empty(t, shifts)
}

func TestParse_MultipleMonthSections(t *testing.T) {
	text := "november 2025\nfredag 07:00 - 15:00 28\ndesember 2025\nfredag 07:00 - 15:00 5"

	shifts := schedule.NewParser().Parse(text)

	require.Len(t, shifts, 2)
	assert.Equal(t, "28.11.2025", shifts[0].Date)
	assert.Equal(t, "05.12.2025", shifts[1].Date)
}

func TestParse_SpacedDayDigits(t *testing.T) {
	// OCR occasionally splits a two-digit day into "2 3".
	text := "desember 2025\ntirsdag 22:00 - 06:00 2 3"

	shifts := schedule.NewParser().Parse(text)

	require.Len(t, shifts, 1)
	assert.Equal(t, "23.12.2025", shifts[0].Date)
	assert.Equal(t, models.ShiftTypeNight, shifts[0].ShiftType)
}

func TestParse_DeduplicatesIdenticalShifts(t *testing.T) {
	text := "desember 2025\nmandag 07:00 - 15:00 1\nmandag 07:00 - 15:00 1"

	shifts := schedule.NewParser().Parse(text)

	assert.Len(t, shifts, 1)
}

func TestParse_RejectsOutOfRangeTimes(t *testing.T) {
	text := "desember 2025\nmandag 25:00 - 15:00 1\ntirsdag 07:00 - 15:61 2"

	shifts := schedule.NewParser().Parse(text)

	assert.Empty(t, shifts)
}

func TestParse_RejectsInvalidDay(t *testing.T) {
	text := "desember 2025\nmandag 07:00 - 15:00 0\ntirsdag 07:00 - 15:00 32"

	shifts := schedule.NewParser().Parse(text)

	assert.Empty(t, shifts)
}

func TestParse_TextBetweenTimeAndDayBlocksMatch(t *testing.T) {
	// Non-whitespace between the time range and the day token means the
	// trailing digit is not this shift's day.
	text := "desember 2025\nmandag 07:00 - 15:00 notat 1"

	shifts := schedule.NewParser().Parse(text)

	assert.Empty(t, shifts)
}

func TestParse_MisreadWeekdayCharacters(t *testing.T) {
	// "søndag" and "lørdag" often come out of OCR with a mangled ø.
	text := "desember 2025\ns0ndag 10:00 - 18:00 7\nl6rdag 08:00 - 16:00 6"

	shifts := schedule.NewParser().Parse(text)

	require.Len(t, shifts, 2)
	assert.Equal(t, "07.12.2025", shifts[0].Date)
	assert.Equal(t, "06.12.2025", shifts[1].Date)
}

func TestParse_MixedCaseInput(t *testing.T) {
	text := "Desember 2025\nMandag 07:00 - 15:00 1"

	shifts := schedule.NewParser().Parse(text)

	require.Len(t, shifts, 1)
	assert.Equal(t, "01.12.2025", shifts[0].Date)
}

func TestParse_SingleDigitTimesArePadded(t *testing.T) {
	text := "desember 2025\nmandag 7:00 - 15:00 1"

	shifts := schedule.NewParser().Parse(text)

	require.Len(t, shifts, 1)
	assert.Equal(t, "07:00", shifts[0].StartTime)
}
