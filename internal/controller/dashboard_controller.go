package controller

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/unclebandit/framestorm-backend/internal/dashboard"
	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/generator"
)

type DashboardController struct {
	Dashboard      *dashboard.Manager
	MaxUploadBytes int64
	// WaitTimeout bounds GET /dashboard?wait=1.
	WaitTimeout time.Duration
}

func (c *DashboardController) Open(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var body struct {
		CampaignID string `json:"campaign_id"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, err)
			return
		}
	}

	snap, err := c.Dashboard.Open(r.Context(), ownerID, body.CampaignID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Get returns the current snapshot. With wait=1 it first blocks until a
// running generation finishes or WaitTimeout passes.
func (c *DashboardController) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var (
		snap dashboard.Snapshot
		err  error
	)
	if wait := r.URL.Query().Get("wait"); wait == "1" || wait == "true" {
		timeout := c.WaitTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		snap, err = c.Dashboard.Await(ctx, ownerID)
	} else {
		snap, err = c.Dashboard.Get(ownerID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (c *DashboardController) Close(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	c.Dashboard.Close(ownerID)
	w.WriteHeader(http.StatusNoContent)
}

func (c *DashboardController) SetTab(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var body struct {
		Tab string `json:"tab"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	snap, err := c.Dashboard.SetTab(ownerID, body.Tab)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Generate accepts {"prompt": "..."} or a multipart form with a prompt field
// and optional files, and answers 202 with the generating snapshot.
func (c *DashboardController) Generate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var (
		prompt string
		files  []generator.Attachment
	)
	if isMultipart(r) {
		form, err := parseMultipart(w, r, c.MaxUploadBytes)
		if err != nil {
			writeError(w, err)
			return
		}
		defer form.RemoveAll()
		prompt = formValue(form, "prompt")
		for _, fh := range form.File["files"] {
			f, err := fh.Open()
			if err != nil {
				writeError(w, appErrors.NewValidation("files", err.Error()))
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(w, appErrors.NewValidation("files", err.Error()))
				return
			}
			files = append(files, generator.Attachment{Name: fh.Filename, MIMEType: fileType(fh), Data: data})
		}
	} else {
		var body struct {
			Prompt string `json:"prompt"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, err)
			return
		}
		prompt = body.Prompt
	}

	snap, err := c.Dashboard.Submit(r.Context(), ownerID, prompt, files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}
