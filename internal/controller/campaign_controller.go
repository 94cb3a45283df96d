package controller

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/framestorm-backend/internal/dashboard"
	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Dashboard       *dashboard.Manager
	MaxUploadBytes  int64
}

// CreateCampaign accepts multipart form data (title, description, type,
// target_audience, files) or a JSON body without files. The new campaign
// becomes the active one on the owner's dashboard.
func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var in service.CreateCampaignInput
	if isMultipart(r) {
		form, err := parseMultipart(w, r, c.MaxUploadBytes)
		if err != nil {
			writeError(w, err)
			return
		}
		defer form.RemoveAll()
		in = service.CreateCampaignInput{
			Title:          formValue(form, "title"),
			Description:    formValue(form, "description"),
			Type:           formValue(form, "type"),
			TargetAudience: formValue(form, "target_audience"),
			Attachments:    attachments(form),
		}
	} else if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), ownerID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{"campaign": campaign}
	if c.Dashboard != nil {
		snap, err := c.Dashboard.Open(r.Context(), ownerID, campaign.ID)
		if err != nil {
			// The campaign is stored; the dashboard can be reopened later.
			logger.Get("http").WithError(err).WithField("campaign_id", campaign.ID).Warn("failed to open dashboard after create")
			resp["dashboard_error"] = "dashboard unavailable"
		} else {
			resp["dashboard"] = snap
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	// Parse query parameters
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	campaignType := r.URL.Query().Get("type")

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), ownerID, page, pageSize, campaignType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":       campaigns,
		"pagination": pagination, // already contains total_count, total_pages, page, page_size
	})
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	campaign, err := c.CampaignService.GetCampaign(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) (*multipart.Form, error) {
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, appErrors.NewValidation("body", "invalid multipart form: "+err.Error())
	}
	return r.MultipartForm, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// attachments keeps the order the files were sent in.
func attachments(form *multipart.Form) []service.Attachment {
	headers := form.File["files"]
	out := make([]service.Attachment, 0, len(headers))
	for _, fh := range headers {
		out = append(out, service.Attachment{
			Name:     fh.Filename,
			MIMEType: fileType(fh),
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return out
}

func fileType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
