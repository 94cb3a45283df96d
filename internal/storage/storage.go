// Package storage uploads campaign media into the asset bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/unclebandit/framestorm-backend/internal/repository"
)

// BlobStore writes an object and returns its path inside the bucket.
type BlobStore interface {
	Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
}

// ObjectPath builds "<owner>/<unix millis>-<file name>".
func ObjectPath(owner string, at time.Time, filename string) string {
	return fmt.Sprintf("%s/%d-%s", owner, at.UnixMilli(), path.Base(filepath.ToSlash(filename)))
}

// PostgresStore keeps objects in the blobs table.
type PostgresStore struct {
	Repo   *repository.BlobRepository
	Bucket string
	// MaxBytes caps a single object; zero means unlimited.
	MaxBytes int64
}

func (s *PostgresStore) Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	data, err := readLimited(body, s.MaxBytes)
	if err != nil {
		return "", err
	}
	if err := s.Repo.Insert(ctx, s.Bucket, objectPath, contentType, data); err != nil {
		return "", err
	}
	return objectPath, nil
}

// DiskStore keeps objects under Root/Bucket on the local filesystem.
type DiskStore struct {
	Root     string
	Bucket   string
	MaxBytes int64
}

func (s *DiskStore) Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(s.Root, s.Bucket, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create object %s: %w", objectPath, err)
	}

	src := body
	if s.MaxBytes > 0 {
		src = io.LimitReader(body, s.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.MaxBytes > 0 && n > s.MaxBytes {
		err = fmt.Errorf("object exceeds %d bytes", s.MaxBytes)
	}
	if err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	return objectPath, nil
}

func readLimited(body io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(body)
	}
	data, err := io.ReadAll(io.LimitReader(body, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("object exceeds %d bytes", max)
	}
	return data, nil
}
