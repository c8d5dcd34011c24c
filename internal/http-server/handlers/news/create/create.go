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

type NewsCreator interface {
	CreateNews(ctx context.Context, adminID uuid.UUID, req *api.NewsRequest) (*api.NewsResponse, error)
}

type Response struct {
	News api.NewsResponse `json:"news"`
}

func New(log *slog.Logger, creator NewsCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.create.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		var req api.NewsRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		news, err := creator.CreateNews(r.Context(), user.ID, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create news")
			return
		}

		log.Info("News created",
			slog.String("id", news.ID.String()),
			slog.String("slug", news.Slug),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{News: *news})
	}
}
