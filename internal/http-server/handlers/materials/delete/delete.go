package delete

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/internal/http-server/handlers"

	"github.com/google/uuid"
)

type MaterialDeleter interface {
	DeleteMaterial(ctx context.Context, teacherID, id uuid.UUID) error
}

func New(log *slog.Logger, deleter MaterialDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.materials.delete.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		if err := deleter.DeleteMaterial(r.Context(), user.ID, id); err != nil {
			handlers.Fail(w, r, log, err, "failed to delete material")
			return
		}

		log.Info("Material deleted", slog.String("id", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
