package create

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
)

type BookCreator interface {
	CreateBook(ctx context.Context, req *api.BookRequest) (*api.BookResponse, error)
}

type Response struct {
	Book api.BookResponse `json:"book"`
}

func New(log *slog.Logger, creator BookCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.books.create.New"

		log := handlers.Logger(log, op, r)

		var req api.BookRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		book, err := creator.CreateBook(r.Context(), &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create book")
			return
		}

		log.Info("Book created",
			slog.String("id", book.ID.String()),
			slog.Int("stock", book.TotalStock),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Book: *book})
	}
}
