package dashboard

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
	ParentDashboard(ctx context.Context, parentID uuid.UUID, studentID *uuid.UUID) (*api.ParentDashboardResponse, error)
}

// New builds the dashboard of the child picked by ?student_id, or of the
// parent's first child.
func New(log *slog.Logger, getter DashboardGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.parent.dashboard.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		studentID, ok := handlers.QueryID(w, r, log, "student_id")
		if !ok {
			return
		}

		dashboard, err := getter.ParentDashboard(r.Context(), user.ID, studentID)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to build dashboard")
			return
		}

		log.Info("Parent dashboard built", slog.String("student_id", dashboard.Student.ID.String()))
		render.JSON(w, r, dashboard)
	}
}
