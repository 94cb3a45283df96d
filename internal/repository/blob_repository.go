package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BlobRepository stores object bytes in the blobs table.
type BlobRepository struct {
	DB *sqlx.DB
}

// Insert fails if bucket/path already exists.
func (r *BlobRepository) Insert(ctx context.Context, bucket, path, contentType string, data []byte) error {
	query := `
		INSERT INTO blobs (bucket, path, content_type, size, data)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.DB.ExecContext(ctx, query, bucket, path, contentType, len(data), data); err != nil {
		return fmt.Errorf("failed to insert blob %s/%s: %w", bucket, path, err)
	}
	return nil
}
