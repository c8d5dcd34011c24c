package service

import (
	"testing"
	"time"

	"tutor-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestSessionTopicLabel(t *testing.T) {
	tests := []struct {
		subject, topic string
		want           *string
	}{
		{"Math", "Fractions", strp("Math-Fractions")},
		{"Math", "", strp("Math")},
		{"", "Fractions", strp("Fractions")},
		{" Math ", "Math", strp("Math")},
		{"", "  ", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SessionTopicLabel(tt.subject, tt.topic), "%q/%q", tt.subject, tt.topic)
	}

	assert.Equal(t, "Math-Math", SubjectLabel("Math", "Math"))
	assert.Equal(t, "", SubjectLabel(" ", ""))
}

func TestSessionTimeLabel(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	start := time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC)

	assert.Nil(t, SessionTimeLabel(nil, &end, jakarta))
	assert.Equal(t, strp("09:00"), SessionTimeLabel(&start, nil, jakarta))
	assert.Equal(t, strp("09:00 - 10:30"), SessionTimeLabel(&start, &end, jakarta))
	assert.Equal(t, strp("02:00 - 03:30"), SessionTimeLabel(&start, &end, time.UTC))
}

func TestDateLabel(t *testing.T) {
	may := time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "07 Mei 2025", DateLabel(may, "id"))
	assert.Equal(t, "07 May 2025", DateLabel(may, "en"))
	assert.Equal(t, "07 May 2025", DateLabel(may, "fr"))
}

func TestAttendanceNoteTitle(t *testing.T) {
	now := time.Date(2025, 8, 17, 9, 0, 0, 0, time.UTC)
	svc := NewService(nil, nil, WithClock(func() time.Time { return now }), WithLocale("id"))

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	sch := &models.Schedule{Subject: "Math", Topic: "Fractions"}

	t.Run("with session label", func(t *testing.T) {
		a := &models.Attendance{AttendanceDate: &date, SessionTopic: strp("Math-Fractions")}
		assert.Equal(t, "Attendance Note 10 Mar 2025 · Math-Fractions - Math - Fractions", svc.AttendanceNoteTitle(a, sch))
	})

	t.Run("duplicates dropped", func(t *testing.T) {
		a := &models.Attendance{AttendanceDate: &date, SessionTopic: strp("Math")}
		same := &models.Schedule{Subject: "Math", Topic: "Math"}
		assert.Equal(t, "Attendance Note 10 Mar 2025 · Math", svc.AttendanceNoteTitle(a, same))
	})

	t.Run("no label and no date", func(t *testing.T) {
		a := &models.Attendance{}
		assert.Equal(t, "Attendance Note 17 Agu 2025", svc.AttendanceNoteTitle(a, &models.Schedule{}))
	})
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Dipinjam", StatusLabel(string(models.BookBorrowed), "id"))
	assert.Equal(t, "Dipinjam", StatusLabel(string(models.LoanBorrowed), "id"))
	assert.Equal(t, "Overdue", StatusLabel(string(models.LoanOverdue), "fr"))
	assert.Equal(t, "Nonaktif", StatusLabel("inactive", "id"))
	assert.Equal(t, "weird", StatusLabel("weird", "en"))
}
