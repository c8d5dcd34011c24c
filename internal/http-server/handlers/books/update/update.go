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

type BookUpdater interface {
	UpdateBook(ctx context.Context, id uuid.UUID, req *api.BookRequest) (*api.BookResponse, error)
}

type Response struct {
	Book api.BookResponse `json:"book"`
}

func New(log *slog.Logger, updater BookUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.books.update.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.BookRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		saved, err := updater.UpdateBook(r.Context(), id, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to update book")
			return
		}

		log.Info("Book updated", slog.String("id", id.String()))
		render.JSON(w, r, Response{Book: *saved})
	}
}
