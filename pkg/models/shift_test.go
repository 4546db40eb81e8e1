package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftsync/pkg/models"
)

func TestShift_DurationMinutes(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		minutes int
	}{
		{"day shift", "07:00", "15:00", 480},
		{"night shift crossing midnight", "22:00", "06:00", 480},
		{"ends at midnight", "16:00", "00:00", 480},
		{"one minute before midnight", "23:59", "00:00", 1},
		{"identical start and end", "08:00", "08:00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift := models.Shift{StartTime: tt.start, EndTime: tt.end}
			minutes, err := shift.DurationMinutes()
			require.NoError(t, err)
			assert.Equal(t, tt.minutes, minutes)
		})
	}
}

func TestShift_DurationMinutes_InvalidTimes(t *testing.T) {
	invalid := []models.Shift{
		{StartTime: "25:00", EndTime: "15:00"},
		{StartTime: "07:00", EndTime: "15:60"},
		{StartTime: "0700", EndTime: "15:00"},
		{StartTime: "", EndTime: "15:00"},
	}

	for _, shift := range invalid {
		_, err := shift.DurationMinutes()
		assert.Error(t, err, "start %q end %q", shift.StartTime, shift.EndTime)
	}
}

func TestShift_Key(t *testing.T) {
	a := models.Shift{Date: "01.12.2026", StartTime: "07:00", EndTime: "15:00", ShiftType: models.ShiftTypeEarly}
	b := models.Shift{Date: "01.12.2026", StartTime: "07:00", EndTime: "15:00", ShiftType: models.ShiftTypeMid}
	c := models.Shift{Date: "02.12.2026", StartTime: "07:00", EndTime: "15:00", ShiftType: models.ShiftTypeEarly}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestValidShiftType(t *testing.T) {
	for _, known := range models.ShiftTypes {
		assert.True(t, models.ValidShiftType(known))
	}
	assert.False(t, models.ValidShiftType("dagvakt"))
	assert.False(t, models.ValidShiftType(""))
}
