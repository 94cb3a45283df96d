// internal/model/campaign.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CampaignType selects the generation pipeline and renderer for a campaign.
// It never changes after the campaign is created.
type CampaignType string

const (
	CampaignVideo     CampaignType = "video"
	CampaignBlog      CampaignType = "blog"
	CampaignInstagram CampaignType = "instagram"
)

// CampaignTypes lists every campaign type in tab order.
var CampaignTypes = []CampaignType{CampaignVideo, CampaignBlog, CampaignInstagram}

func (t CampaignType) Valid() bool {
	switch t {
	case CampaignVideo, CampaignBlog, CampaignInstagram:
		return true
	}
	return false
}

// ParseCampaignType accepts the lower-case type name, ignoring surrounding space.
func ParseCampaignType(s string) (CampaignType, error) {
	t := CampaignType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown campaign type %q", s)
	}
	return t, nil
}

type Campaign struct {
	ID             string       `db:"id" json:"id"`
	OwnerID        string       `db:"owner_id" json:"owner_id"`
	Title          string       `db:"title" json:"title"`
	Description    string       `db:"description" json:"description"`
	Type           CampaignType `db:"campaign_type" json:"campaign_type"`
	TargetAudience string       `db:"target_audience" json:"target_audience,omitempty"`
	MediaFiles     MediaFiles   `db:"media_files" json:"media_files"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

// MediaFile describes one attachment persisted to blob storage.
type MediaFile struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	MIMEType string `json:"type"`
	Size     int64  `json:"size"`
}

// MediaFiles is stored as a JSONB array. A nil slice is written as [].
type MediaFiles []MediaFile

func (m MediaFiles) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]MediaFile(m))
}

func (m *MediaFiles) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = MediaFiles{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("media_files: unsupported type %T", src)
	}
	files := MediaFiles{}
	if err := json.Unmarshal(data, &files); err != nil {
		return fmt.Errorf("media_files: %w", err)
	}
	*m = files
	return nil
}
