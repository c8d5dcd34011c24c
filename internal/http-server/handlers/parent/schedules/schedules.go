package schedules

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type ScheduleLister interface {
	ParentSchedules(ctx context.Context, parentID uuid.UUID, studentID *uuid.UUID, status, search string) (*api.ParentSchedulesResponse, error)
}

func New(log *slog.Logger, lister ScheduleLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.parent.schedules.New"

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
		list, err := lister.ParentSchedules(r.Context(), user.ID, studentID, q.Get("status"), q.Get("search"))
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list schedules")
			return
		}

		log.Info("Parent schedules listed", slog.Int("count", len(list.Schedules)))
		render.JSON(w, r, list)
	}
}
