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

type UserUpdater interface {
	UpdateUser(ctx context.Context, id uuid.UUID, req *api.UserRequest) (*api.UserResponse, error)
}

type Response struct {
	User api.UserResponse `json:"user"`
}

func New(log *slog.Logger, updater UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.update.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.UserRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		saved, err := updater.UpdateUser(r.Context(), id, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to update user")
			return
		}

		log.Info("User updated", slog.String("id", id.String()))
		render.JSON(w, r, Response{User: *saved})
	}
}
