package get

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
)

type NewsLister interface {
	ListNews(ctx context.Context, q api.NewsListQuery) (*api.NewsListResponse, error)
}

func New(log *slog.Logger, lister NewsLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.get.New"

		log := handlers.Logger(log, op, r)

		list, err := lister.ListNews(r.Context(), api.NewsListQuery{
			Search:      r.URL.Query().Get("search"),
			WithTrashed: handlers.QueryBool(r, "with_trashed"),
			OnlyTrashed: handlers.QueryBool(r, "only_trashed"),
		})
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list news")
			return
		}

		log.Info("News listed", slog.Int("count", len(list.News)))
		render.JSON(w, r, list)
	}
}
