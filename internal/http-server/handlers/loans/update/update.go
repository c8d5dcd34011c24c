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

type LoanUpdater interface {
	UpdateLoan(ctx context.Context, id uuid.UUID, req *api.LoanUpdateRequest) (*api.LoanResponse, error)
}

type Response struct {
	Loan api.LoanResponse `json:"loan"`
}

// New handles both returning a book and flagging a loan as overdue.
func New(log *slog.Logger, updater LoanUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.loans.update.New"

		log := handlers.Logger(log, op, r)

		id, ok := handlers.PathID(w, r, log, "id")
		if !ok {
			return
		}

		var req api.LoanUpdateRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		loan, err := updater.UpdateLoan(r.Context(), id, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to update loan")
			return
		}

		log.Info("Loan updated",
			slog.String("id", id.String()),
			slog.String("status", loan.Status),
		)
		render.JSON(w, r, Response{Loan: *loan})
	}
}
