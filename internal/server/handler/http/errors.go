package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/TaskKeeper/internal/apperrors"
	"github.com/atinyakov/TaskKeeper/internal/logger"
	"go.uber.org/zap"
)

// statusFor maps an application error onto its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status that matches err and a JSON body
// carrying its public message. Internal causes are logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": apperrors.Message(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
