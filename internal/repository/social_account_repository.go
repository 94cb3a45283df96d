package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/framestorm-backend/internal/model"
)

type SocialAccountRepositoryInterface interface {
	GetByOwnerPlatform(ctx context.Context, ownerID string, platform model.Platform) (*model.SocialAccount, error)
	Insert(ctx context.Context, a *model.SocialAccount) error
	Update(ctx context.Context, a *model.SocialAccount) error
}

type SocialAccountRepository struct {
	DB *sqlx.DB
}

const socialAccountColumns = `id, owner_id, platform, username, account_id, is_connected, created_at, updated_at`

// GetByOwnerPlatform returns nil, nil when the owner has no account for platform.
func (r *SocialAccountRepository) GetByOwnerPlatform(ctx context.Context, ownerID string, platform model.Platform) (*model.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE owner_id=$1 AND platform=$2`
	var a model.SocialAccount
	if err := r.DB.GetContext(ctx, &a, query, ownerID, platform); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get social account: %w", err)
	}
	return &a, nil
}

func (r *SocialAccountRepository) Insert(ctx context.Context, a *model.SocialAccount) error {
	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO social_accounts (id, owner_id, platform, username, account_id, is_connected, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID, a.OwnerID, a.Platform, a.Username, a.AccountID, a.Connected, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert social account: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an existing account by ID.
func (r *SocialAccountRepository) Update(ctx context.Context, a *model.SocialAccount) error {
	a.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE social_accounts
		SET username=$1, account_id=$2, is_connected=$3, updated_at=$4
		WHERE id=$5 AND owner_id=$6
	`
	res, err := r.DB.ExecContext(ctx, query, a.Username, a.AccountID, a.Connected, a.UpdatedAt, a.ID, a.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update social account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("social account %s not found", a.ID)
	}
	return nil
}

var _ SocialAccountRepositoryInterface = (*SocialAccountRepository)(nil)
