package create

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type NoteCreator interface {
	CreateNote(ctx context.Context, teacherID uuid.UUID, req *api.NoteRequest) (*api.NoteResponse, error)
}

type Response struct {
	Note api.NoteResponse `json:"note"`
}

func New(log *slog.Logger, creator NoteCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.create.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		var req api.NoteRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		note, err := creator.CreateNote(r.Context(), user.ID, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create note")
			return
		}

		log.Info("Note created", slog.String("id", note.ID.String()))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Note: *note})
	}
}
