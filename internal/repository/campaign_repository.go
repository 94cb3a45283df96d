package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Campaign, error)
	ListCampaigns(ctx context.Context, ownerID string, offset, limit int, campaignType string) ([]model.Campaign, int, error)
}

type CampaignRepository struct {
	DB *sqlx.DB
}

const campaignColumns = `id, owner_id, title, description, campaign_type, target_audience, media_files, created_at`

// ====================== Campaign CRUD ======================

// Create assigns the ID and creation time and inserts the row. Campaigns are
// never updated afterwards.
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	if c.MediaFiles == nil {
		c.MediaFiles = model.MediaFiles{}
	}

	query := `
		INSERT INTO campaigns (id, owner_id, title, description, campaign_type, target_audience, media_files, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Title, c.Description, c.Type, c.TargetAudience, c.MediaFiles, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1 AND owner_id=$2`
	var c model.Campaign
	if err := r.DB.GetContext(ctx, &c, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}

// ListByOwner returns every campaign of the owner, newest first.
func (r *CampaignRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE owner_id=$1 ORDER BY created_at DESC, id DESC`
	campaigns := []model.Campaign{}
	if err := r.DB.SelectContext(ctx, &campaigns, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// ListCampaigns returns one page of the owner's campaigns and the total count.
func (r *CampaignRepository) ListCampaigns(ctx context.Context, ownerID string, offset, limit int, campaignType string) ([]model.Campaign, int, error) {
	where := ` WHERE owner_id=$1`
	args := []interface{}{ownerID}
	argPos := 2

	if campaignType != "" {
		where += fmt.Sprintf(" AND campaign_type=$%d", argPos)
		args = append(args, campaignType)
		argPos++
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)

	campaigns := []model.Campaign{}
	if err := r.DB.SelectContext(ctx, &campaigns, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}

	// Count total
	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM campaigns`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	return campaigns, total, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
