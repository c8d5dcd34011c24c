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

type NewsUpdater interface {
	UpdateNews(ctx context.Context, id uuid.UUID, req *api.NewsRequest) (*api.NewsResponse, error)
}

type Response struct {
	News api.NewsResponse `json:"news"`
}

func New(log *slog.Logger, updater NewsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.update.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.NewsRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		saved, err := updater.UpdateNews(r.Context(), id, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to update news")
			return
		}

		log.Info("News updated", slog.String("id", id.String()))
		render.JSON(w, r, Response{News: *saved})
	}
}
