// internal/model/activity.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Activity kinds published on the activity topic.
const (
	ActivityCampaignCreated  = "campaign.created"
	ActivityContentGenerated = "content.generated"
	ActivityContentFailed    = "content.failed"
	ActivityAccountSaved     = "social.account_saved"
	ActivityUploadAttempted  = "social.upload_attempted"
)

type ActivityEvent struct {
	ID         string         `db:"id" json:"id"`
	OwnerID    string         `db:"owner_id" json:"owner_id"`
	CampaignID *string        `db:"campaign_id" json:"campaign_id,omitempty"`
	Kind       string         `db:"kind" json:"kind"`
	Detail     ActivityDetail `db:"detail" json:"detail"`
	Tags       pq.StringArray `db:"tags" json:"tags"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// ActivityDetail is free-form event data stored as JSONB.
type ActivityDetail map[string]any

func (d ActivityDetail) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(d))
}

func (d *ActivityDetail) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*d = ActivityDetail{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("detail: unsupported type %T", src)
	}
	out := ActivityDetail{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("detail: %w", err)
	}
	*d = out
	return nil
}
