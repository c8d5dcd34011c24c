package restore

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type StudentRestorer interface {
	RestoreStudent(ctx context.Context, id uuid.UUID) (*api.StudentResponse, error)
}

type Response struct {
	Student api.StudentResponse `json:"student"`
}

func New(log *slog.Logger, restorer StudentRestorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.restore.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		student, err := restorer.RestoreStudent(r.Context(), id)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to restore student")
			return
		}

		log.Info("Student restored", slog.String("id", id.String()))
		render.JSON(w, r, Response{Student: *student})
	}
}
