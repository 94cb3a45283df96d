package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/model"
	"github.com/unclebandit/framestorm-backend/internal/service"
)

type SocialController struct {
	SocialService *service.SocialService
}

func platformParam(r *http.Request) (model.Platform, error) {
	p, err := model.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		return "", appErrors.NewValidation("platform", err.Error())
	}
	return p, nil
}

// GetAccount answers 200 with {"account": null} when nothing is configured.
func (c *SocialController) GetAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	platform, err := platformParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := c.SocialService.LoadAccount(r.Context(), ownerID, platform)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}

func (c *SocialController) SaveAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	platform, err := platformParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Username  string `json:"username"`
		AccountID string `json:"account_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	account, err := c.SocialService.SaveAccount(r.Context(), ownerID, platform, body.Username, body.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}

func (c *SocialController) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	platform, err := platformParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	outcome, err := c.SocialService.AttemptUpload(r.Context(), ownerID, platform)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, outcome)
}
