package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/npezzotti/support-chat/internal/support"
)

type ApiError struct {
	StatusCode int                  `json:"status_code"`
	Message    string               `json:"message"`
	Errors     []support.FieldError `json:"errors,omitempty"`
	Err        error                `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func lower(s string) string {
	return strings.ToLower(s)
}

func NewBadRequestError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusBadRequest,
		Message:    lower(http.StatusText(http.StatusBadRequest)),
	}
}

func NewValidationError(fields []support.FieldError) *ApiError {
	return &ApiError{
		StatusCode: http.StatusBadRequest,
		Message:    "validation error",
		Errors:     fields,
	}
}

func NewNotFoundError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusNotFound,
		Message:    lower(http.StatusText(http.StatusNotFound)),
	}
}

func NewInternalServerError(err error) *ApiError {
	return &ApiError{
		StatusCode: http.StatusInternalServerError,
		Message:    lower(http.StatusText(http.StatusInternalServerError)),
		Err:        err,
	}
}

func NewUnauthorizedError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusUnauthorized,
		Message:    lower(http.StatusText(http.StatusUnauthorized)),
	}
}

func NewForbiddenError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusForbidden,
		Message:    lower(http.StatusText(http.StatusForbidden)),
	}
}

// fromServiceError maps the support package's error taxonomy onto an
// HTTP response. Anything unrecognized is treated as an internal error.
func fromServiceError(err error) *ApiError {
	var (
		ve *support.ValidationError
		nf *support.NotFoundError
	)

	switch {
	case errors.As(err, &ve):
		return NewValidationError(ve.Fields)
	case errors.As(err, &nf):
		errResp := NewNotFoundError()
		errResp.Message = nf.Error()
		return errResp
	default:
		return NewInternalServerError(err)
	}
}
