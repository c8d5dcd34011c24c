package get

import (
	"context"
	"log/slog"
	"net/http"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/handlers"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type AttendanceGetter interface {
	ListAttendance(ctx context.Context, teacherID uuid.UUID, q api.AttendanceListQuery) (*api.AttendanceListResponse, error)
}

func New(log *slog.Logger, getter AttendanceGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.get.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		scheduleID, ok := handlers.QueryID(w, r, log, "schedule_id")
		if !ok {
			return
		}

		q := r.URL.Query()
		list, err := getter.ListAttendance(r.Context(), user.ID, api.AttendanceListQuery{
			ScheduleDate: q.Get("schedule_date"),
			ScheduleID:   scheduleID,
			Status:       q.Get("status"),
			Search:       q.Get("search"),
			Subject:      q.Get("subject"),
		})
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list attendance")
			return
		}

		log.Info("Attendance retrieved",
			slog.String("date", list.ScheduleDate),
			slog.Int("count", len(list.Records)),
		)
		render.JSON(w, r, list)
	}
}
