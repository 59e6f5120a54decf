// internal/app/system/httpapi/httpapi.go

// Package httpapi holds the JSON wire helpers shared by every feature.
//
// Success responses use the envelope
//
//	{ "success": true, "message": "...", "data": { ... } }
//
// with camelCase keys inside data. Error responses are a bare
//
//	{ "error": "..." }
//
// object. Server-side failures are logged with full detail and answered
// with a generic message so internals never leak to clients.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cardfolio/clubhouse/internal/app/system/limits"
	"go.uber.org/zap"
)

type successBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, successBody{Success: true, Message: message, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusCreated, successBody{Success: true, Message: message, Data: data})
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Error: msg})
}

// DecodeJSON reads the request body into dst, capping the body size so a
// hostile client cannot exhaust memory. Callers should answer a non-nil
// error with a 400.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("request body too large")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

// ErrorLogger pairs zap logging with generic client-facing errors for
// unexpected server failures.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

// LogServerError logs the failure with request context, then answers 500
// with userMsg. logMsg and err are for operators; userMsg is all the client
// sees.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	Error(w, http.StatusInternalServerError, userMsg)
}
