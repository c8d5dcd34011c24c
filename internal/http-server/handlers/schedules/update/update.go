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

type ScheduleUpdater interface {
	UpdateSchedule(ctx context.Context, teacherID, id uuid.UUID, req *api.ScheduleUpdateRequest) (*api.ScheduleResponse, error)
}

type Response struct {
	Schedule api.ScheduleResponse `json:"schedule"`
}

func New(log *slog.Logger, updater ScheduleUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.update.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.ScheduleUpdateRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		schedule, err := updater.UpdateSchedule(r.Context(), user.ID, id, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to update schedule")
			return
		}

		log.Info("Schedule updated", slog.String("id", id.String()))
		render.JSON(w, r, Response{Schedule: *schedule})
	}
}
