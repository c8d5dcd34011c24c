package delete

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/internal/http-server/handlers"

	"github.com/google/uuid"
)

type ScheduleDeleter interface {
	DeleteSchedule(ctx context.Context, teacherID, id uuid.UUID) error
}

func New(log *slog.Logger, deleter ScheduleDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.delete.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		if err := deleter.DeleteSchedule(r.Context(), user.ID, id); err != nil {
			handlers.Fail(w, r, log, err, "failed to delete schedule")
			return
		}

		log.Info("Schedule deleted", slog.String("id", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
