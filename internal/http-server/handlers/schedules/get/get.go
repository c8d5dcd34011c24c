package get

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type ScheduleGetter interface {
	GetSchedule(ctx context.Context, teacherID, id uuid.UUID) (*api.ScheduleResponse, error)
	ListSchedules(ctx context.Context, teacherID uuid.UUID, q api.ScheduleListQuery) (*api.ScheduleListResponse, error)
}

type Response struct {
	Schedule *api.ScheduleResponse `json:"schedule,omitempty"`
}

// New serves both GET /schedules and GET /schedules/{id}.
func New(log *slog.Logger, getter ScheduleGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.get.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		if chi.URLParam(r, "id") != "" {
			id, ok := handlers.PathID(w, r, log, "id")
			if !ok {
				return
			}

			schedule, err := getter.GetSchedule(r.Context(), user.ID, id)
			if err != nil {
				handlers.Fail(w, r, log, err, "failed to get schedule")
				return
			}

			log.Info("Schedule retrieved", slog.String("id", id.String()))
			render.JSON(w, r, Response{Schedule: schedule})
			return
		}

		q := r.URL.Query()
		list, err := getter.ListSchedules(r.Context(), user.ID, api.ScheduleListQuery{
			Status:      q.Get("status"),
			Search:      q.Get("search"),
			WithTrashed: handlers.QueryBool(r, "with_trashed"),
			OnlyTrashed: handlers.QueryBool(r, "only_trashed"),
		})
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list schedules")
			return
		}

		log.Info("Schedules listed", slog.Int("count", len(list.Schedules)))
		render.JSON(w, r, list)
	}
}
