package controller

import (
	"net/http"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/generator"
	"github.com/unclebandit/framestorm-backend/internal/model"
)

type PromptController struct {
	Catalog *generator.Catalog
}

// ListPrompts returns suggested prompts for ?type=, or for every type when
// the parameter is absent.
func (c *PromptController) ListPrompts(w http.ResponseWriter, r *http.Request) {
	types := model.CampaignTypes
	if q := r.URL.Query().Get("type"); q != "" {
		t, err := model.ParseCampaignType(q)
		if err != nil {
			writeError(w, appErrors.NewValidation("type", err.Error()))
			return
		}
		types = []model.CampaignType{t}
	}

	out := make(map[model.CampaignType][]string, len(types))
	for _, t := range types {
		helpers, err := c.Catalog.Helpers(t)
		if err != nil {
			writeError(w, err)
			return
		}
		out[t] = helpers
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": out})
}
