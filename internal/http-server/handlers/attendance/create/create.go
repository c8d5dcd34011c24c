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

type AttendanceRecorder interface {
	RecordAttendance(ctx context.Context, teacherID uuid.UUID, req *api.AttendanceRequest) (*api.AttendanceResponse, error)
}

type Response struct {
	Attendance api.AttendanceResponse `json:"attendance"`
}

// New upserts the attendance row of one student for one session and mirrors
// its notes into a teacher note.
func New(log *slog.Logger, recorder AttendanceRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.create.New"

		log := handlers.Logger(log, op, r)

		user, ok := handlers.Caller(w, r, log)
		if !ok {
			return
		}

		var req api.AttendanceRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		log.Debug("Request body decoded", slog.Any("request", req))

		attendance, err := recorder.RecordAttendance(r.Context(), user.ID, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to record attendance")
			return
		}

		log.Info("Attendance recorded",
			slog.String("id", attendance.ID.String()),
			slog.String("student_id", attendance.StudentID.String()),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Attendance: *attendance})
	}
}
