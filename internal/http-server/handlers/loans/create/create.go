package create

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type BookLender interface {
	BorrowBook(ctx context.Context, issuerID uuid.UUID, req *api.BorrowRequest) (*api.LoanResponse, error)
}

type Response struct {
	Loan api.LoanResponse `json:"loan"`
}

// New lends one copy of a book. The calling admin is stored as the issuer.
func New(log *slog.Logger, lender BookLender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.loans.create.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		var req api.BorrowRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		loan, err := lender.BorrowBook(r.Context(), user.ID, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to borrow book")
			return
		}

		log.Info("Book borrowed",
			slog.String("loan_id", loan.ID.String()),
			slog.String("book_id", loan.BookID.String()),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Loan: *loan})
	}
}
