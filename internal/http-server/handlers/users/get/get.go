package get

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
)

type UserLister interface {
	ListUsers(ctx context.Context, q api.UserListQuery) (*api.UserListResponse, error)
}

func New(log *slog.Logger, lister UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.get.New"

		log := handlers.Logger(log, op, r)

		list, err := lister.ListUsers(r.Context(), api.UserListQuery{
			Search: r.URL.Query().Get("search"),
			Role:   r.URL.Query().Get("role"),
		})
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list users")
			return
		}

		log.Info("Users listed", slog.Int("count", len(list.Users)))
		render.JSON(w, r, list)
	}
}
