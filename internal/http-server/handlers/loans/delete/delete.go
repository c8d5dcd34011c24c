package delete

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/internal/http-server/handlers"

	"github.com/google/uuid"
)

type LoanDeleter interface {
	DeleteLoan(ctx context.Context, id uuid.UUID) error
}

func New(log *slog.Logger, deleter LoanDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.loans.delete.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		if err := deleter.DeleteLoan(r.Context(), id); err != nil {
			handlers.Fail(w, r, log, err, "failed to delete loan")
			return
		}

		log.Info("Loan deleted", slog.String("id", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
