package delete

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/internal/http-server/handlers"

	"github.com/google/uuid"
)

type UserDeleter interface {
	DeleteUser(ctx context.Context, callerID, id uuid.UUID) error
}

func New(log *slog.Logger, deleter UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.delete.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		if err := deleter.DeleteUser(r.Context(), user.ID, id); err != nil {
			handlers.Fail(w, r, log, err, "failed to delete user")
			return
		}

		log.Info("User deleted", slog.String("id", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
