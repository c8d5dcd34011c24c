package create

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
)

type UserCreator interface {
	CreateUser(ctx context.Context, req *api.UserRequest) (*api.UserResponse, error)
}

type Response struct {
	User api.UserResponse `json:"user"`
}

func New(log *slog.Logger, creator UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.create.New"

		log := handlers.Logger(log, op, r)

		var req api.UserRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		user, err := creator.CreateUser(r.Context(), &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create user")
			return
		}

		log.Info("User created",
			slog.String("id", user.ID.String()),
			slog.String("role", user.Role),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{User: *user})
	}
}
