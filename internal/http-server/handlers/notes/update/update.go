package update

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type NoteUpdater interface {
	UpdateNote(ctx context.Context, teacherID, id uuid.UUID, req *api.NoteRequest) (*api.NoteResponse, error)
}

type Response struct {
	Note api.NoteResponse `json:"note"`
}

func New(log *slog.Logger, updater NoteUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.update.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.NoteRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		note, err := updater.UpdateNote(r.Context(), user.ID, id, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to update note")
			return
		}

		log.Info("Note updated", slog.String("id", id.String()))
		render.JSON(w, r, Response{Note: *note})
	}
}
