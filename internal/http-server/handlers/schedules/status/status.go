package status

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type StatusSetter interface {
	SetScheduleStatus(ctx context.Context, teacherID, id uuid.UUID, req *api.ScheduleStatusRequest) (*api.ScheduleResponse, error)
}

type Response struct {
	Schedule api.ScheduleResponse `json:"schedule"`
}

// New locks a schedule's badge, or unlocks it with {"locked": false}.
func New(log *slog.Logger, setter StatusSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.status.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.ScheduleStatusRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		schedule, err := setter.SetScheduleStatus(r.Context(), user.ID, id, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to set schedule status")
			return
		}

		log.Info("Schedule status set",
			slog.String("id", id.String()),
			slog.String("badge", schedule.StatusBadge),
			slog.Bool("locked", schedule.StatusLockedAt != nil),
		)
		render.JSON(w, r, Response{Schedule: *schedule})
	}
}
