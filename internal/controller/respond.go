package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get("http").WithError(err).Warn("failed to encode response")
	}
}

// statusFor maps the application error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrGenerationInFlight):
		return http.StatusConflict
	case appErrors.IsValidation(err):
		return http.StatusBadRequest
	case appErrors.IsNotFound(err):
		return http.StatusNotFound
	case appErrors.IsPrecondition(err):
		return http.StatusPreconditionFailed
	case appErrors.IsStorage(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Get("http").WithError(err).Error("unhandled error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// owner returns the authenticated owner or writes 401.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := session.FromContext(r.Context())
	if !ok || id.OwnerID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return "", false
	}
	return id.OwnerID, true
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.NewValidation("body", "invalid JSON: "+err.Error())
	}
	return nil
}
