package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/service"
	"github.com/unclebandit/framestorm-backend/internal/session"
)

// ActivityHandler serves the activity feed of a campaign
type ActivityHandler struct {
	Campaigns *service.CampaignService
	Activity  *service.ActivityRecorder
}

// ListCampaignActivity returns the newest events of an owned campaign
func (h *ActivityHandler) ListCampaignActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	campaignID := chi.URLParam(r, "id")

	// Ownership check first so other owners get 404
	if _, err := h.Campaigns.GetCampaign(r.Context(), id.OwnerID, campaignID); err != nil {
		if appErrors.IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.Activity.List(r.Context(), id.OwnerID, campaignID, limit)
	if err != nil {
		http.Error(w, "failed to load activity: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"campaign_id": campaignID,
		"events":      events,
	})
}
