package delete

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/internal/http-server/handlers"

	"github.com/google/uuid"
)

type NewsDeleter interface {
	DeleteNews(ctx context.Context, id uuid.UUID) error
}

func New(log *slog.Logger, deleter NewsDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.delete.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		if err := deleter.DeleteNews(r.Context(), id); err != nil {
			handlers.Fail(w, r, log, err, "failed to delete news")
			return
		}

		log.Info("News deleted", slog.String("id", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
