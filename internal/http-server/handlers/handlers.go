// Package handlers holds the plumbing shared by the per-endpoint handler
// packages.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/middleware/identity"
	"tutor-portal/pkg/logger/sl"
	"tutor-portal/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func Logger(log *slog.Logger, op string, r *http.Request) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Fail writes the error response for err. Unknown errors become a 500 with
// msg as the message.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	var (
		status int
		code   response.ErrCode
		text   string
	)

	switch {
	case errors.Is(err, response.ErrNotFound):
		status, code, text = http.StatusNotFound, response.NOT_FOUND, response.Detail(err, "resource not found")
	case errors.Is(err, response.ErrForbidden):
		status, code, text = http.StatusForbidden, response.FORBIDDEN, response.Detail(err, "access denied")
	case errors.Is(err, response.ErrUnauthorized):
		status, code, text = http.StatusUnauthorized, response.UNAUTHORIZED, "unauthorized"
	case errors.Is(err, response.ErrLocked):
		status, code, text = http.StatusLocked, response.LOCKED, response.Detail(err, "schedule is being modified, retry later")
	case errors.Is(err, response.ErrConflict):
		status, code, text = http.StatusConflict, response.CONFLICT, response.Detail(err, "resource already exists")
	case errors.Is(err, response.ErrScheduleNotStarted):
		status, code, text = http.StatusUnprocessableEntity, response.SCHEDULE_NOT_STARTED, response.Detail(err, "schedule has not started yet")
	case errors.Is(err, response.ErrInvalidID):
		status, code, text = http.StatusBadRequest, response.BAD_REQUEST, response.Detail(err, "invalid id")
	case errors.Is(err, response.ErrBadRequest):
		status, code, text = http.StatusBadRequest, response.VALIDATION_FAILED, response.Detail(err, "bad request")
	default:
		log.Error(msg, sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), msg))
		return
	}

	log.Warn(msg, slog.Int("status", status), sl.Err(err))
	w.WriteHeader(status)
	render.JSON(w, r, response.Error(string(code), text))
}

// Decode reads the JSON body into req and runs its validate tags. It writes
// the error response itself and reports whether the handler may go on.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		log.Error("Failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
		return false
	}

	if err := api.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("Failed to validate request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid request"))
			return false
		}

		log.Warn("Invalid request", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return false
	}

	return true
}

// PathID parses the {name} URL parameter as a uuid.
func PathID(w http.ResponseWriter, r *http.Request, log *slog.Logger, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)

	id, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("Invalid path id", slog.String(name, raw))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid "+name))
		return uuid.Nil, false
	}

	return id, true
}

// QueryID parses an optional uuid query parameter; empty means absent.
func QueryID(w http.ResponseWriter, r *http.Request, log *slog.Logger, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("Invalid query id", slog.String(name, raw))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid "+name))
		return nil, false
	}

	return &id, true
}

// QueryBool treats "1" and anything strconv accepts as true.
func QueryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// Caller returns the authenticated user or writes a 401.
func Caller(w http.ResponseWriter, r *http.Request, log *slog.Logger) (*identity.User, bool) {
	user, err := identity.Current(r.Context())
	if err != nil {
		log.Error("No identity on request")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "unauthorized"))
		return nil, false
	}

	return user, true
}
