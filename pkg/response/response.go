package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST       ErrCode = "REQUEST_FAILED"
	BAD_REQUEST          ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED    ErrCode = "VALIDATION_FAILED"
	UNAUTHORIZED         ErrCode = "UNAUTHORIZED"
	FORBIDDEN            ErrCode = "FORBIDDEN"
	NOT_FOUND            ErrCode = "NOT_FOUND"
	LOCKED               ErrCode = "LOCKED"
	CONFLICT             ErrCode = "CONFLICT"
	SCHEDULE_NOT_STARTED ErrCode = "SCHEDULE_NOT_STARTED"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidID          = errors.New("invalid id")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrLocked             = errors.New("resource is locked")
	ErrConflict           = errors.New("conflict")
	ErrScheduleNotStarted = errors.New("schedule has not started yet")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsg []string

	for _, err := range errs {
		field := jsonFieldName(err)

		switch err.ActualTag() {
		case "required":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is required", field))
		case "min":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at least %s", field, err.Param()))
		case "max":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at most %s", field, err.Param()))
		case "oneof":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be one of [%s]", field, err.Param()))
		case "gtefield":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must not be before '%s'", field, strings.ToLower(err.Param())))
		case "url":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be a valid url", field))
		case "timezone":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be a valid timezone", field))
		default:
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is invalid", field))
		}
	}

	return Response{
		ResponseError: ResponseError{
			Code:    string(VALIDATION_FAILED),
			Message: "validation failed",
			Fields:  errMsg,
		},
	}
}

// jsonFieldName prefers the json name registered on the validator; the
// namespace keeps the index for slice elements (student_ids[1]).
func jsonFieldName(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return err.Field()
	}
	return ns
}

// DetailError attaches a client-facing message to a sentinel error.
type DetailError struct {
	Err    error
	Detail string
}

func (e *DetailError) Error() string { return e.Err.Error() + ": " + e.Detail }

func (e *DetailError) Unwrap() error { return e.Err }

func WithDetail(err error, detail string) error {
	return &DetailError{Err: err, Detail: detail}
}

// Detail returns the message attached with WithDetail, or fallback.
func Detail(err error, fallback string) string {
	var de *DetailError
	if errors.As(err, &de) && de.Detail != "" {
		return de.Detail
	}
	return fallback
}
