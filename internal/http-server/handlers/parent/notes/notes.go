package notes

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type NoteLister interface {
	ParentNotes(ctx context.Context, parentID uuid.UUID, studentID *uuid.UUID, category, search string) (*api.ParentNotesResponse, error)
}

func New(log *slog.Logger, lister NoteLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.parent.notes.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		studentID, ok := handlers.QueryID(w, r, log, "student_id")
		if !ok {
			return
		}

		q := r.URL.Query()
		list, err := lister.ParentNotes(r.Context(), user.ID, studentID, q.Get("category"), q.Get("search"))
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list notes")
			return
		}

		log.Info("Parent notes listed", slog.Int("count", len(list.Notes)))
		render.JSON(w, r, list)
	}
}
