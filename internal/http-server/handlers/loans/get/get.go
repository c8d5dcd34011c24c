package get

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
)

type LoanLister interface {
	ListLoans(ctx context.Context, q api.LoanListQuery) (*api.LoanListResponse, error)
}

func New(log *slog.Logger, lister LoanLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.loans.get.New"

		log := handlers.Logger(log, op, r)

		list, err := lister.ListLoans(r.Context(), api.LoanListQuery{
			Search: r.URL.Query().Get("search"),
			Status: r.URL.Query().Get("status"),
		})
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list loans")
			return
		}

		log.Info("Loans listed", slog.Int("count", len(list.Loans)))
		render.JSON(w, r, list)
	}
}
