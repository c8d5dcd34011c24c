package get

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
	ListNotes(ctx context.Context, teacherID uuid.UUID) ([]api.NoteResponse, error)
}

type Response struct {
	Notes []api.NoteResponse `json:"data"`
}

func New(log *slog.Logger, lister NoteLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.get.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		notes, err := lister.ListNotes(r.Context(), user.ID)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list notes")
			return
		}

		log.Info("Notes listed", slog.Int("count", len(notes)))
		render.JSON(w, r, Response{Notes: notes})
	}
}
