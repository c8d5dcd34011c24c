package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tutor-portal/api"
	"tutor-portal/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// naive layouts are read in the request's timezone
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time %q", raw)
}

// parseDate accepts a plain date or a timestamp and returns the calendar date
// in loc.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(api.DateLayout, raw); err == nil {
		return t, nil
	}

	t, err := parseTime(raw, loc)
	if err != nil {
		return time.Time{}, err
	}

	return models.DateOf(t, loc), nil
}

func optionalString(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func jsonColumn(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}

func rawJSON(j datatypes.JSON) json.RawMessage {
	if len(j) == 0 {
		return nil
	}
	return json.RawMessage(j)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(api.DateLayout)
	return &v
}

// dedupeIDs drops nil ids and duplicates, keeping the first occurrence.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func studentRef(st models.Student) api.StudentRef {
	return api.StudentRef{ID: st.ID, Code: st.Code, Name: st.Name}
}

func scheduleRef(sch models.Schedule) api.ScheduleRef {
	return api.ScheduleRef{ID: sch.ID, Subject: sch.Subject, Topic: sch.Topic}
}

func toStudentResponse(st models.Student) api.StudentResponse {
	return api.StudentResponse{
		ID:             st.ID,
		Code:           st.Code,
		Name:           st.Name,
		EducationLevel: st.EducationLevel,
		ParentID:       st.ParentID,
		Status:         st.Status,
		DateOfBirth:    formatDate(st.DateOfBirth),
		SchoolName:     st.SchoolName,
		Address:        st.Address,
		CreatedAt:      st.CreatedAt,
		UpdatedAt:      st.UpdatedAt,
		DeletedAt:      st.DeletedAt,
	}
}

func toMaterialResponse(m models.Material) api.MaterialResponse {
	return api.MaterialResponse{
		ID:          m.ID,
		ScheduleID:  m.ScheduleID,
		UploadedBy:  m.UploadedBy,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		DownloadURL: m.DownloadURL,
		Visibility:  m.Visibility,
		Labels:      rawJSON(m.Labels),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toAttendanceResponse(a models.Attendance, students map[uuid.UUID]models.Student, schedules map[uuid.UUID]models.Schedule) api.AttendanceResponse {
	resp := api.AttendanceResponse{
		ID:               a.ID,
		StudentID:        a.StudentID,
		ScheduleID:       a.ScheduleID,
		RecordedBy:       a.RecordedBy,
		AttendanceDate:   formatDate(a.AttendanceDate),
		RecordedAt:       a.RecordedAt,
		SessionTopic:     a.SessionTopic,
		SessionTime:      a.SessionTime,
		Notes:            a.Notes,
		InputChannel:     a.InputChannel,
		RequiresFollowUp: a.RequiresFollowUp,
		Meta:             rawJSON(a.Meta),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}

	if a.Status != nil {
		status := string(*a.Status)
		resp.Status = &status
	}
	if st, ok := students[a.StudentID]; ok {
		ref := studentRef(st)
		resp.Student = &ref
	}
	if a.ScheduleID != nil {
		if sch, ok := schedules[*a.ScheduleID]; ok {
			ref := scheduleRef(sch)
			resp.Schedule = &ref
		}
	}

	return resp
}

func toNoteResponse(n models.TeacherNote, students map[uuid.UUID]models.Student, schedules map[uuid.UUID]models.Schedule) api.NoteResponse {
	resp := api.NoteResponse{
		ID:              n.ID,
		StudentID:       n.StudentID,
		ScheduleID:      n.ScheduleID,
		AttendanceID:    n.AttendanceID,
		TeacherID:       n.TeacherID,
		Title:           n.Title,
		Note:            n.Note,
		Category:        string(n.Category),
		Visibility:      string(n.Visibility),
		TagColor:        n.TagColor,
		Sentiment:       n.Sentiment,
		IsFlagged:       n.IsFlagged,
		FollowUpActions: n.FollowUpActions,
		Attachments:     rawJSON(n.Attachments),
		RecordedAt:      n.RecordedAt,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}

	if st, ok := students[n.StudentID]; ok {
		ref := studentRef(st)
		resp.Student = &ref
	}
	if n.ScheduleID != nil {
		if sch, ok := schedules[*n.ScheduleID]; ok {
			ref := scheduleRef(sch)
			resp.Schedule = &ref
		}
	}

	return resp
}

func summaryResponse(sum models.AttendanceSummary) api.AttendanceSummary {
	return api.AttendanceSummary{
		Present: sum.Present,
		Sick:    sum.Sick,
		Excused: sum.Excused,
		Absent:  sum.Absent,
	}
}

// studentIndex loads the given students keyed by id.
func studentIndex(ctx context.Context, repo Repository, ids []uuid.UUID) (map[uuid.UUID]models.Student, error) {
	out := make(map[uuid.UUID]models.Student, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	students, err := repo.ListStudentsByIDs(ctx, dedupeIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, st := range students {
		out[st.ID] = st
	}

	return out, nil
}

func scheduleIndex(ctx context.Context, repo Repository, ids []uuid.UUID) (map[uuid.UUID]models.Schedule, error) {
	out := make(map[uuid.UUID]models.Schedule, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	schedules, err := repo.ListSchedulesByIDs(ctx, dedupeIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, sch := range schedules {
		out[sch.ID] = sch
	}

	return out, nil
}

// attendanceRefs resolves the students and schedules referenced by rows.
func attendanceRefs(ctx context.Context, repo Repository, rows []models.Attendance) (map[uuid.UUID]models.Student, map[uuid.UUID]models.Schedule, error) {
	studentIDs := make([]uuid.UUID, 0, len(rows))
	scheduleIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		studentIDs = append(studentIDs, r.StudentID)
		if r.ScheduleID != nil {
			scheduleIDs = append(scheduleIDs, *r.ScheduleID)
		}
	}

	students, err := studentIndex(ctx, repo, studentIDs)
	if err != nil {
		return nil, nil, err
	}
	schedules, err := scheduleIndex(ctx, repo, scheduleIDs)
	if err != nil {
		return nil, nil, err
	}

	return students, schedules, nil
}

func noteRefs(ctx context.Context, repo Repository, notes []models.TeacherNote) (map[uuid.UUID]models.Student, map[uuid.UUID]models.Schedule, error) {
	studentIDs := make([]uuid.UUID, 0, len(notes))
	scheduleIDs := make([]uuid.UUID, 0, len(notes))
	for _, n := range notes {
		studentIDs = append(studentIDs, n.StudentID)
		if n.ScheduleID != nil {
			scheduleIDs = append(scheduleIDs, *n.ScheduleID)
		}
	}

	students, err := studentIndex(ctx, repo, studentIDs)
	if err != nil {
		return nil, nil, err
	}
	schedules, err := scheduleIndex(ctx, repo, scheduleIDs)
	if err != nil {
		return nil, nil, err
	}

	return students, schedules, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
