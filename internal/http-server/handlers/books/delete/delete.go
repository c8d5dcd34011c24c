package delete

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/internal/http-server/handlers"

	"github.com/google/uuid"
)

type BookDeleter interface {
	DeleteBook(ctx context.Context, id uuid.UUID) error
}

func New(log *slog.Logger, deleter BookDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.books.delete.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		if err := deleter.DeleteBook(r.Context(), id); err != nil {
			handlers.Fail(w, r, log, err, "failed to delete book")
			return
		}

		log.Info("Book deleted", slog.String("id", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
