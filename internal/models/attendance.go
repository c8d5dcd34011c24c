package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusSick    AttendanceStatus = "Sick"
	StatusExcused AttendanceStatus = "Excused"
	StatusAbsent  AttendanceStatus = "Absent"
)

var AttendanceStatuses = []AttendanceStatus{StatusPresent, StatusSick, StatusExcused, StatusAbsent}

const InputChannelWeb = "web"

type Attendance struct {
	ID               uuid.UUID         `db:"id"`
	StudentID        uuid.UUID         `db:"student_id"`
	ScheduleID       *uuid.UUID        `db:"schedule_id"`
	RecordedBy       *uuid.UUID        `db:"recorded_by"`
	AttendanceDate   *time.Time        `db:"attendance_date"`
	RecordedAt       *time.Time        `db:"recorded_at"`
	Status           *AttendanceStatus `db:"status"`
	SessionTopic     *string           `db:"session_topic"`
	SessionTime      *string           `db:"session_time"`
	Notes            *string           `db:"notes"`
	InputChannel     *string           `db:"input_channel"`
	RequiresFollowUp bool              `db:"requires_follow_up"`
	Meta             datatypes.JSON    `db:"meta"`
	CreatedAt        time.Time         `db:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at"`
}

type AttendanceFilter struct {
	// TeacherID matches rows of the teacher's schedules and rows the teacher
	// recorded.
	TeacherID  *uuid.UUID
	StudentID  *uuid.UUID
	ScheduleID *uuid.UUID
	Date       *time.Time
}

// MatchAttendanceStatus resolves raw against the known statuses ignoring case
// and surrounding whitespace.
func MatchAttendanceStatus(raw string) (AttendanceStatus, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return "", false
	}
	for _, s := range AttendanceStatuses {
		if strings.EqualFold(string(s), clean) {
			return s, true
		}
	}
	return "", false
}

// NormalizeAttendanceStatus is applied to every status a caller submits.
// Unknown values fall back to Present.
func NormalizeAttendanceStatus(raw string) AttendanceStatus {
	if s, ok := MatchAttendanceStatus(raw); ok {
		return s
	}
	return StatusPresent
}

type AttendanceSummary struct {
	Present int `json:"Present"`
	Sick    int `json:"Sick"`
	Excused int `json:"Excused"`
	Absent  int `json:"Absent"`
}

func (s AttendanceSummary) Total() int {
	return s.Present + s.Sick + s.Excused + s.Absent
}

// SummarizeAttendance counts rows per status. Unmarked rows and legacy values
// outside the known set are skipped.
func SummarizeAttendance(rows []Attendance) AttendanceSummary {
	var sum AttendanceSummary

	for _, row := range rows {
		if row.Status == nil {
			continue
		}
		status, ok := MatchAttendanceStatus(string(*row.Status))
		if !ok {
			continue
		}
		switch status {
		case StatusPresent:
			sum.Present++
		case StatusSick:
			sum.Sick++
		case StatusExcused:
			sum.Excused++
		case StatusAbsent:
			sum.Absent++
		}
	}

	return sum
}

// DateOf returns the calendar date of t in loc as a UTC midnight value, which
// is how DATE columns come back from the store.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
