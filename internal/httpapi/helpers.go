package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"painel.org/internal/auth"
	"painel.org/internal/obs"
	"painel.org/internal/report"
	"painel.org/internal/upstream"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// handleAuthError maps auth service failures onto the response taxonomy.
// Anything unexpected is logged with detail and surfaced as a generic 500.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "invalid request")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "username already exists")
	default:
		logInternal(r, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func handleReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidQuery):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, report.ErrSourceUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "data source unavailable")
	default:
		logInternal(r, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func handleUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, upstream.ErrUnavailable) {
		logInternal(r, err)
		writeError(w, r, http.StatusBadGateway, "upstream unavailable")
		return
	}
	logInternal(r, err)
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

func logInternal(r *http.Request, err error) {
	obs.LogEntry(map[string]any{
		"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		"level":      "error",
		"msg":        "request_failed",
		"request_id": RequestIDFromContext(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"error":      err.Error(),
	})
}
