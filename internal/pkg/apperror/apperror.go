package apperror

import "net/http"

// AppError is a custom error type that includes an HTTP status code, a
// stable machine-readable kind, and an optional wrapped cause.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    string // stable error code, e.g. "not_found", used in the JSON error body
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code, kind, and message.
func New(code int, kind, message string) *AppError {
	return &AppError{Code: code, Kind: kind, Message: message}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, kind, message string) *AppError {
	return &AppError{Code: code, Kind: kind, Message: message, Err: err}
}

// NotFound — missing restaurant, sector, table, or reservation.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, "not_found", message)
}

// NoCapacity — no table/combination fits, a lock is busy, or the guest cap
// is reached. Lock-busy collapses into this kind deliberately: from the
// caller's view the slot is simply unavailable right now.
func NoCapacity(message string) *AppError {
	return New(http.StatusConflict, "no_capacity", message)
}

// OutsideServiceWindow — requested start does not fall inside any shift.
func OutsideServiceWindow(message string) *AppError {
	return New(http.StatusUnprocessableEntity, "outside_service_window", message)
}

// InvalidFormat — payload validation, advance-booking violation, past
// start, or updating a cancelled reservation.
func InvalidFormat(message string) *AppError {
	return New(http.StatusBadRequest, "invalid_format", message)
}

// Conflict — generic state conflict (e.g. approving an expired hold).
func Conflict(message string) *AppError {
	return New(http.StatusConflict, "conflict", message)
}

// Internal — unexpected, non-recoverable error.
func Internal(err error) *AppError {
	return Wrap(err, http.StatusInternalServerError, "internal_server_error", "internal server error")
}
