package get

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
)

type BookLister interface {
	ListBooks(ctx context.Context, q api.BookListQuery) (*api.BookListResponse, error)
}

func New(log *slog.Logger, lister BookLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.books.get.New"

		log := handlers.Logger(log, op, r)

		list, err := lister.ListBooks(r.Context(), api.BookListQuery{
			Search:   r.URL.Query().Get("search"),
			Status:   r.URL.Query().Get("status"),
			Lendable: handlers.QueryBool(r, "lendable"),
		})
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list books")
			return
		}

		log.Info("Books listed", slog.Int("count", len(list.Books)))
		render.JSON(w, r, list)
	}
}
