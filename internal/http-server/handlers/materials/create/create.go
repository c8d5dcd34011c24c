package create

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type MaterialCreator interface {
	CreateMaterial(ctx context.Context, teacherID, scheduleID uuid.UUID, req *api.MaterialRequest) (*api.MaterialResponse, error)
}

type Response struct {
	Material api.MaterialResponse `json:"material"`
}

// New attaches material metadata to the schedule in the {id} path parameter.
func New(log *slog.Logger, creator MaterialCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.materials.create.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		scheduleID, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.MaterialRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		material, err := creator.CreateMaterial(r.Context(), user.ID, scheduleID, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create material")
			return
		}

		log.Info("Material created", slog.String("id", material.ID.String()), slog.String("schedule_id", scheduleID.String()))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Material: *material})
	}
}
