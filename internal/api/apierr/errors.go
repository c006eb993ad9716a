package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blockduel/blockduel-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeMatchNotFound    = "MATCH_NOT_FOUND"
	CodeMatchFull        = "MATCH_FULL"
	CodeAlreadyInMatch   = "ALREADY_IN_MATCH"
	CodeNotInMatch       = "NOT_IN_MATCH"
	CodeMatchNotWaiting  = "MATCH_NOT_WAITING"
	CodeMatchNotPlaying  = "MATCH_NOT_PLAYING"
	CodeMatchEnded       = "MATCH_ENDED"
	CodeSnapshotNotFound = "SNAPSHOT_NOT_FOUND"
	CodeInvalidEvent     = "INVALID_EVENT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrMatchNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMatchNotFound, "Match not found"}}
	case errors.Is(err, model.ErrMatchFull):
		return &httpError{http.StatusConflict, APIError{CodeMatchFull, "Match already has two players"}}
	case errors.Is(err, model.ErrAlreadyInMatch):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInMatch, "Already in this match"}}
	case errors.Is(err, model.ErrNotInMatch):
		return &httpError{http.StatusForbidden, APIError{CodeNotInMatch, "Not a participant of this match"}}
	case errors.Is(err, model.ErrMatchNotWaiting):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotWaiting, "Match is no longer joinable"}}
	case errors.Is(err, model.ErrMatchNotPlaying):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotPlaying, "Match is not in progress"}}
	case errors.Is(err, model.ErrMatchEnded):
		return &httpError{http.StatusConflict, APIError{CodeMatchEnded, "Match has already ended"}}
	case errors.Is(err, model.ErrSnapshotNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSnapshotNotFound, "No snapshot recorded for match"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInvalidEventError creates an error for a rejected wire envelope
func NewInvalidEventError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidEvent, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Player identity required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
