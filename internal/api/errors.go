package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorised"
	ErrCodeForbidden       = "forbidden"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodeValidation      = "validation_error"
	ErrCodeNonNumeric      = "non_numeric_value"
	ErrCodeNoReadings      = "no_readings"
	ErrCodeNoMatchingPairs = "no_matching_pairs"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeReadingError maps reading package errors to HTTP responses.
// Unrecognised errors are logged and reported as 500 with fallback.
func (s *Server) writeReadingError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, reading.ErrDuplicateIdentity):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, reading.ErrInvalidRange),
		errors.Is(err, reading.ErrInvalidTolerance),
		errors.Is(err, reading.ErrInvalidReading):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, reading.ErrNonNumericValue):
		writeError(w, http.StatusBadRequest, ErrCodeNonNumeric, err.Error())
	case errors.Is(err, reading.ErrDeviceNotFound),
		errors.Is(err, reading.ErrSensorNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, reading.ErrNoReadingsForSensor):
		writeError(w, http.StatusNotFound, ErrCodeNoReadings, err.Error())
	case errors.Is(err, reading.ErrNoMatchingPairs):
		writeError(w, http.StatusNotFound, ErrCodeNoMatchingPairs, err.Error())
	default:
		s.logger.Error(fallback, "error", err)
		writeInternalError(w, fallback)
	}
}
