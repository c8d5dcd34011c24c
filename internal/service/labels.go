package service

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"tutor-portal/internal/models"
)

const attendanceNotePrefix = "Attendance Note"

var monthAbbr = map[string][12]string{
	"id": {"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"},
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// joinLabel trims parts, drops empty ones and optionally duplicates.
func joinLabel(sep string, dedupe bool, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if dedupe && slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, sep)
}

// SubjectLabel is the "subject-topic" label used by attendance filters.
func SubjectLabel(subject, topic string) string {
	return joinLabel("-", false, subject, topic)
}

// SessionTopicLabel is denormalized onto attendance rows. Nil when both parts
// are empty.
func SessionTopicLabel(subject, topic string) *string {
	label := joinLabel("-", true, subject, topic)
	if label == "" {
		return nil
	}
	return &label
}

// SessionTimeLabel renders "HH:MM" or "HH:MM - HH:MM" in loc.
func SessionTimeLabel(start, end *time.Time, loc *time.Location) *string {
	if start == nil {
		return nil
	}

	label := start.In(loc).Format("15:04")
	if end != nil {
		label = fmt.Sprintf("%s - %s", label, end.In(loc).Format("15:04"))
	}

	return &label
}

// DateLabel formats a calendar date as "02 Jan 2006" with localized month
// names. Unknown locales fall back to English.
func DateLabel(date time.Time, locale string) string {
	months, ok := monthAbbr[locale]
	if !ok {
		months = monthAbbr["en"]
	}
	y, m, d := date.Date()
	return fmt.Sprintf("%02d %s %d", d, months[m-1], y)
}

// AttendanceNoteTitle builds the title of the note mirrored from an attendance
// row, e.g. "Attendance Note 10 Mar 2025 · Math-Fractions - Math - Fractions".
func (s *Service) AttendanceNoteTitle(a *models.Attendance, sch *models.Schedule) string {
	date := models.DateOf(s.now(), s.loc)
	if a.AttendanceDate != nil {
		date = *a.AttendanceDate
	}

	var topic, subject, schedTopic string
	if a.SessionTopic != nil {
		topic = *a.SessionTopic
	}
	if sch != nil {
		subject, schedTopic = sch.Subject, sch.Topic
	}

	title := attendanceNotePrefix + " " + DateLabel(date, s.locale)
	if label := joinLabel(" - ", true, topic, subject, schedTopic); label != "" {
		title += " · " + label
	}

	return title
}

var statusLabels = map[string]map[string]string{
	"id": {
		string(models.BookAvailable):   "Tersedia",
		string(models.BookBorrowed):    "Dipinjam",
		string(models.BookMaintenance): "Perawatan",
		string(models.BookLost):        "Hilang",
		string(models.LoanReturned):    "Dikembalikan",
		string(models.LoanOverdue):     "Terlambat",
		"active":                       "Aktif",
		"inactive":                     "Nonaktif",
	},
	"en": {
		string(models.BookAvailable):   "Available",
		string(models.BookBorrowed):    "Borrowed",
		string(models.BookMaintenance): "Maintenance",
		string(models.BookLost):        "Lost",
		string(models.LoanReturned):    "Returned",
		string(models.LoanOverdue):     "Overdue",
		"active":                       "Active",
		"inactive":                     "Inactive",
	},
}

// StatusLabel translates a book, loan or account status. Unknown values are
// returned as they are.
func StatusLabel(status, locale string) string {
	labels, ok := statusLabels[locale]
	if !ok {
		labels = statusLabels["en"]
	}
	if label, ok := labels[status]; ok {
		return label
	}
	return status
}
