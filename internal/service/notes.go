package service

import (
	"context"
	"fmt"
	"strings"

	"tutor-portal/api"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (s *Service) ListNotes(ctx context.Context, teacherID uuid.UUID) ([]api.NoteResponse, error) {
	const op = "service.ListNotes"

	notes, err := s.store.ListNotes(ctx, models.NoteFilter{TeacherID: &teacherID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.noteResponses(ctx, notes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) CreateNote(ctx context.Context, teacherID uuid.UUID, req *api.NoteRequest) (*api.NoteResponse, error) {
	const op = "service.CreateNote"

	now := s.now()
	note := &models.TeacherNote{
		ID:        uuid.New(),
		TeacherID: teacherID,
		CreatedAt: now,
	}

	if err := s.applyNote(ctx, note, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	note.UpdatedAt = now

	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.noteResponse(ctx, note)
}

func (s *Service) UpdateNote(ctx context.Context, teacherID, id uuid.UUID, req *api.NoteRequest) (*api.NoteResponse, error) {
	const op = "service.UpdateNote"

	note, err := s.ownedNote(ctx, teacherID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.applyNote(ctx, note, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	note.UpdatedAt = s.now()

	if err := s.store.UpdateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.noteResponse(ctx, note)
}

func (s *Service) DeleteNote(ctx context.Context, teacherID, id uuid.UUID) error {
	const op = "service.DeleteNote"

	if _, err := s.ownedNote(ctx, teacherID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) ownedNote(ctx context.Context, teacherID, id uuid.UUID) (*models.TeacherNote, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.TeacherID != teacherID {
		return nil, response.ErrForbidden
	}
	return note, nil
}

func (s *Service) applyNote(ctx context.Context, note *models.TeacherNote, req *api.NoteRequest) error {
	const op = "service.applyNote"

	if _, err := s.store.GetStudent(ctx, req.StudentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if req.ScheduleID != nil {
		if _, err := s.store.GetSchedule(ctx, *req.ScheduleID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	note.StudentID = req.StudentID
	note.ScheduleID = req.ScheduleID
	note.Title = strings.TrimSpace(req.Title)
	note.Note = strings.TrimSpace(req.Note)
	note.Category = models.NoteCategory(req.Category)
	note.Visibility = models.VisibilityParent
	if req.Visibility != nil && *req.Visibility != "" {
		note.Visibility = models.NoteVisibility(*req.Visibility)
	}
	note.TagColor = optionalString(req.TagColor)
	note.Sentiment = optionalString(req.Sentiment)
	note.IsFlagged = req.IsFlagged != nil && *req.IsFlagged
	note.FollowUpActions = optionalString(req.FollowUpActions)
	note.Attachments = jsonColumn(req.Attachments)

	switch {
	case optionalString(req.RecordedAt) != nil:
		t, err := parseTime(*req.RecordedAt, s.loc)
		if err != nil {
			return badRequest(op, "recorded_at is not a valid date")
		}
		note.RecordedAt = t
	case note.RecordedAt.IsZero():
		note.RecordedAt = s.now()
	}

	return nil
}

func (s *Service) noteResponse(ctx context.Context, note *models.TeacherNote) (*api.NoteResponse, error) {
	const op = "service.noteResponse"

	out, err := s.noteResponses(ctx, []models.TeacherNote{*note})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out[0], nil
}

func (s *Service) noteResponses(ctx context.Context, notes []models.TeacherNote) ([]api.NoteResponse, error) {
	students, schedules, err := noteRefs(ctx, s.store, notes)
	if err != nil {
		return nil, err
	}

	out := make([]api.NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n, students, schedules))
	}

	return out, nil
}
