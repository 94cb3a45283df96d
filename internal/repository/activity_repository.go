package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unclebandit/framestorm-backend/internal/model"
)

type ActivityRepositoryInterface interface {
	Insert(ctx context.Context, ev *model.ActivityEvent) error
	ListByCampaign(ctx context.Context, ownerID, campaignID string, limit int) ([]model.ActivityEvent, error)
}

type ActivityRepository struct {
	DB *sqlx.DB
}

// Insert stores ev. An event that already carries an ID keeps it, so a
// redelivered message is written once.
func (r *ActivityRepository) Insert(ctx context.Context, ev *model.ActivityEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.Tags == nil {
		ev.Tags = pq.StringArray{}
	}

	query := `
		INSERT INTO activity_log (id, owner_id, campaign_id, kind, detail, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query,
		ev.ID, ev.OwnerID, ev.CampaignID, ev.Kind, ev.Detail, ev.Tags, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListByCampaign returns the newest events first.
func (r *ActivityRepository) ListByCampaign(ctx context.Context, ownerID, campaignID string, limit int) ([]model.ActivityEvent, error) {
	query := `
		SELECT id, owner_id, campaign_id, kind, detail, tags, created_at
		FROM activity_log
		WHERE owner_id=$1 AND campaign_id=$2
		ORDER BY created_at DESC
		LIMIT $3
	`
	events := []model.ActivityEvent{}
	if err := r.DB.SelectContext(ctx, &events, query, ownerID, campaignID, limit); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return events, nil
}

var _ ActivityRepositoryInterface = (*ActivityRepository)(nil)
