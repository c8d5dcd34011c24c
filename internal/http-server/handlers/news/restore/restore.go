package restore

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type NewsRestorer interface {
	RestoreNews(ctx context.Context, id uuid.UUID) (*api.NewsResponse, error)
}

type Response struct {
	News api.NewsResponse `json:"news"`
}

func New(log *slog.Logger, restorer NewsRestorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.restore.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		news, err := restorer.RestoreNews(r.Context(), id)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to restore news")
			return
		}

		log.Info("News restored", slog.String("id", id.String()))
		render.JSON(w, r, Response{News: *news})
	}
}
