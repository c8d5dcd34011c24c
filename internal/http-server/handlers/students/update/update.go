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

type StudentUpdater interface {
	UpdateStudent(ctx context.Context, id uuid.UUID, req *api.StudentRequest) (*api.StudentSaveResponse, error)
}

func New(log *slog.Logger, updater StudentUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.update.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.StudentRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		saved, err := updater.UpdateStudent(r.Context(), id, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to update student")
			return
		}

		log.Info("Student updated", slog.String("id", id.String()))
		render.JSON(w, r, saved)
	}
}
