package get

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
)

type StudentLister interface {
	ListStudents(ctx context.Context, q api.StudentListQuery) (*api.StudentListResponse, error)
}

func New(log *slog.Logger, lister StudentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.get.New"

		log := handlers.Logger(log, op, r)

		list, err := lister.ListStudents(r.Context(), api.StudentListQuery{
			Search:      r.URL.Query().Get("search"),
			WithTrashed: handlers.QueryBool(r, "with_trashed"),
			OnlyTrashed: handlers.QueryBool(r, "only_trashed"),
		})
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list students")
			return
		}

		log.Info("Students listed", slog.Int("count", len(list.Students)))
		render.JSON(w, r, list)
	}
}
