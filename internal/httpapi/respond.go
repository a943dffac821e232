package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
)

// envelope is the {"ok": ...} wrapper every endpoint answers with.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["ok"] = true
	writeJSON(w, http.StatusOK, body)
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, engine.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, engine.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrStorage):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		msg = "internal server error"
	} else if status == http.StatusServiceUnavailable {
		log.Warn("request failed", zap.Error(err))
	}

	body := envelope{"ok": false, "error": msg}
	var se *engine.StageError
	if errors.As(err, &se) {
		body["stage"] = se.Stage
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body no larger than the limit set by the router.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", engine.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %v", engine.ErrValidation, err)
	}
	return nil
}

func required(fields map[string]string) error {
	for name, v := range fields {
		if v == "" {
			return fmt.Errorf("%w: %s is required", engine.ErrValidation, name)
		}
	}
	return nil
}
