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

type ScheduleCreator interface {
	CreateSchedule(ctx context.Context, teacherID uuid.UUID, req *api.ScheduleCreateRequest) (*api.ScheduleResponse, error)
}

type Response struct {
	Schedule api.ScheduleResponse `json:"schedule"`
}

func New(log *slog.Logger, creator ScheduleCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.create.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		var req api.ScheduleCreateRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		schedule, err := creator.CreateSchedule(r.Context(), user.ID, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create schedule")
			return
		}

		log.Info("Schedule created", slog.String("id", schedule.ID.String()), slog.Int("students", len(schedule.Students)))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Schedule: *schedule})
	}
}
