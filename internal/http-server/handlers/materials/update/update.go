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

type MaterialUpdater interface {
	UpdateMaterial(ctx context.Context, teacherID, id uuid.UUID, req *api.MaterialRequest) (*api.MaterialResponse, error)
}

type Response struct {
	Material api.MaterialResponse `json:"material"`
}

func New(log *slog.Logger, updater MaterialUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.materials.update.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.MaterialRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		material, err := updater.UpdateMaterial(r.Context(), user.ID, id, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to update material")
			return
		}

		log.Info("Material updated", slog.String("id", id.String()))
		render.JSON(w, r, Response{Material: *material})
	}
}
