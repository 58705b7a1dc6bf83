package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// StatusError carries an explicit status code and a client-facing message.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// NewStatusError builds a StatusError.
func NewStatusError(status int, message string) *StatusError {
	return &StatusError{Status: status, Message: message}
}

// RespondError maps domain errors to {"error": ...} responses. Unknown errors
// surface as 500 with their message.
func RespondError(w http.ResponseWriter, err error) {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		Error(w, statusErr.Status, statusErr.Message)
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthorized):
		Error(w, http.StatusUnauthorized, "Unauthorized")
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}
