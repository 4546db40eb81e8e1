package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shiftsync/internal/schedule"
	"shiftsync/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected string
	}{
		{"early morning start", "07:00", "15:00", models.ShiftTypeEarly},
		{"early band lower bound", "06:00", "14:00", models.ShiftTypeEarly},
		{"mid band lower bound", "12:00", "20:00", models.ShiftTypeMid},
		{"afternoon start", "13:00", "21:00", models.ShiftTypeMid},
		{"evening band lower bound", "16:00", "23:00", models.ShiftTypeEvening},
		{"evening crossing midnight", "17:00", "01:00", models.ShiftTypeEvening},
		{"classic night shift", "22:00", "06:00", models.ShiftTypeNight},
		{"late evening ending early", "21:00", "05:00", models.ShiftTypeNight},
		{"just before midnight", "23:59", "07:00", models.ShiftTypeNight},
		{"pre-dawn start ending late", "05:00", "13:00", models.ShiftTypeNight},
		{"night override boundary at 20", "20:00", "04:00", models.ShiftTypeNight},
		{"late start ending past 10", "22:00", "11:00", models.ShiftTypeNight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schedule.Classify(tt.start, tt.end))
		})
	}
}
