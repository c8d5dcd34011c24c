package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAttendanceStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want AttendanceStatus
	}{
		{"Present", StatusPresent},
		{"sick", StatusSick},
		{"  EXCUSED ", StatusExcused},
		{"Absent", StatusAbsent},
		{"Maybe", StatusPresent},
		{"", StatusPresent},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAttendanceStatus(tt.raw))
		})
	}
}

func TestSummarizeAttendance(t *testing.T) {
	status := func(s string) *AttendanceStatus {
		v := AttendanceStatus(s)
		return &v
	}

	rows := []Attendance{
		{Status: status("Present")},
		{Status: status("present")},
		{Status: status("Sick")},
		{Status: status("Absent")},
		{Status: status("Hadir")},
		{Status: status(" ")},
		{Status: nil},
	}

	sum := SummarizeAttendance(rows)

	assert.Equal(t, AttendanceSummary{Present: 2, Sick: 1, Excused: 0, Absent: 1}, sum)
	assert.Equal(t, 4, sum.Total())
}

func TestDateOf(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 20:00 UTC is already the next day in Jakarta
	ts := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), DateOf(ts, jakarta))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), DateOf(ts, time.UTC))
	assert.True(t, SameDate(DateOf(ts, time.UTC), ts))
}
