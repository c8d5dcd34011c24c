package admin

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
)

type DashboardGetter interface {
	AdminDashboard(ctx context.Context) (*api.AdminDashboardResponse, error)
}

func New(log *slog.Logger, getter DashboardGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.admin.New"

		log := handlers.Logger(log, op, r)

		dashboard, err := getter.AdminDashboard(r.Context())
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to build dashboard")
			return
		}

		log.Info("Admin dashboard built",
			slog.Int("users", dashboard.Stats.Users.Total),
			slog.Int("active_loans", dashboard.Stats.Loans.Active),
		)
		render.JSON(w, r, dashboard)
	}
}
