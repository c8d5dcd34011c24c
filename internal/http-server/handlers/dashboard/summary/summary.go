package summary

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type DashboardGetter interface {
	TeacherDashboard(ctx context.Context, teacherID uuid.UUID) (*api.TeacherDashboardResponse, error)
}

func New(log *slog.Logger, getter DashboardGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.summary.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		dashboard, err := getter.TeacherDashboard(r.Context(), user.ID)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to build dashboard")
			return
		}

		log.Info("Dashboard built",
			slog.Int("upcoming", len(dashboard.UpcomingSchedules)),
			slog.Int("notes", len(dashboard.RecentNotes)),
		)
		render.JSON(w, r, dashboard)
	}
}
