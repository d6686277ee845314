package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError is a structured error response for the report server.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates a new APIError.
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

var (
	ErrInvalidRequest  = NewAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrNotFound        = NewAPIError(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrDatasetNotReady = NewAPIError(http.StatusServiceUnavailable, "DATASET_NOT_READY", "Dataset has not been built yet")
	ErrInternalServer  = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// ToAPIError maps an application error onto the HTTP surface.
func ToAPIError(err error) *APIError {
	appErr, ok := err.(*AppError)
	if !ok {
		return &APIError{
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  "INTERNAL_SERVER_ERROR",
			Message:    "Internal server error",
			Details:    err.Error(),
		}
	}

	status := http.StatusInternalServerError
	switch appErr.Type {
	case ErrTypeNotFound:
		status = http.StatusNotFound
	case ErrTypeValidation:
		status = http.StatusBadRequest
	case ErrTypeRetrieval:
		status = http.StatusBadGateway
	}

	return &APIError{
		StatusCode: status,
		ErrorCode:  string(appErr.Type),
		Message:    appErr.Message,
		Details:    appErr.Context,
	}
}
