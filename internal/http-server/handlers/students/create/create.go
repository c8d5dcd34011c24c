package create

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
)

type StudentCreator interface {
	CreateStudent(ctx context.Context, req *api.StudentRequest) (*api.StudentSaveResponse, error)
}

// New creates a student. The parent account password, when one is created,
// is only ever returned here.
func New(log *slog.Logger, creator StudentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.create.New"

		log := handlers.Logger(log, op, r)

		var req api.StudentRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		saved, err := creator.CreateStudent(r.Context(), &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create student")
			return
		}

		log.Info("Student created",
			slog.String("id", saved.Student.ID.String()),
			slog.String("code", saved.Student.Code),
			slog.Bool("parent_account", saved.ParentAccount != nil),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, saved)
	}
}
