// Package handlers provides HTTP request handlers and utilities for the web server.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/domain"
)

// GetVersion returns the server version reported by /health
func GetVersion() string {
	return app.Version
}

// errBadID marks a malformed id in the URL
var errBadID = errors.New("invalid id")

// ParseID extracts and validates the uuid URL parameter named param
func ParseID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", errBadID, param)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a valid uuid", errBadID, raw)
	}
	return id, nil
}

// StatusForError maps domain errors to HTTP status codes
func StatusForError(err error) int {
	switch {
	case errors.Is(err, errBadID), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v as a JSON body with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		LogOperationError("encode_response", "handlers", err)
	}
}

// WriteError writes {"error": ...} with the status derived from err.
// Internal errors are logged and their message withheld.
func WriteError(w http.ResponseWriter, operation string, err error) {
	status := StatusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		LogOperationError(operation, "handlers", err)
		message = http.StatusText(status)
	}
	WriteJSON(w, status, map[string]string{"error": message})
}

// LogOperationError logs operation errors with consistent format
func LogOperationError(operation, layer string, err error, attrs ...any) {
	slog.Error("Operation failed",
		append([]any{"layer", layer, "operation", operation, "error", err}, attrs...)...)
}

// RequestLogger logs every request through slog once it completes
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Get adapts fn to a handler serving GET requests for a single entity id
func Get(param, operation string, fn func(id uuid.UUID) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(r, param)
		if err != nil {
			WriteError(w, operation, err)
			return
		}

		body, err := fn(id)
		if err != nil {
			WriteError(w, operation, err)
			return
		}
		WriteJSON(w, http.StatusOK, body)
	}
}
