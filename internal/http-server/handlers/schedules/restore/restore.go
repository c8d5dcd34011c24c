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

type ScheduleRestorer interface {
	RestoreSchedule(ctx context.Context, teacherID, id uuid.UUID) (*api.ScheduleResponse, error)
}

type Response struct {
	Schedule api.ScheduleResponse `json:"schedule"`
}

func New(log *slog.Logger, restorer ScheduleRestorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.restore.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		schedule, err := restorer.RestoreSchedule(r.Context(), user.ID, id)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to restore schedule")
			return
		}

		log.Info("Schedule restored", slog.String("id", id.String()), slog.String("badge", schedule.StatusBadge))
		render.JSON(w, r, Response{Schedule: *schedule})
	}
}
