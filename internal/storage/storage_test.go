package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/framestorm-backend/internal/repository"
)

func TestObjectPath(t *testing.T) {
	at := time.UnixMilli(1717000000123)
	assert.Equal(t, "user-1/1717000000123-photo.png", ObjectPath("user-1", at, "photo.png"))
	assert.Equal(t, "user-1/1717000000123-photo.png", ObjectPath("user-1", at, "../../photo.png"))
}

func TestDiskStoreUpload(t *testing.T) {
	root := t.TempDir()
	s := &DiskStore{Root: root, Bucket: "campaign-assets"}

	p, err := s.Upload(context.Background(), "user-1/1-a.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "user-1/1-a.txt", p)

	data, err := os.ReadFile(filepath.Join(root, "campaign-assets", "user-1", "1-a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = s.Upload(context.Background(), "user-1/1-a.txt", "text/plain", strings.NewReader("again"))
	assert.Error(t, err)
}

func TestDiskStoreRejectsOversized(t *testing.T) {
	root := t.TempDir()
	s := &DiskStore{Root: root, Bucket: "b", MaxBytes: 3}

	_, err := s.Upload(context.Background(), "u/1-big", "text/plain", strings.NewReader("toolong"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(root, "b", "u", "1-big"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPostgresStoreUpload(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO blobs")).
		WithArgs("campaign-assets", "u/1-a.png", "image/png", 3, []byte("abc")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &PostgresStore{Repo: &repository.BlobRepository{DB: sqlx.NewDb(conn, "postgres")}, Bucket: "campaign-assets"}
	p, err := s.Upload(context.Background(), "u/1-a.png", "image/png", strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "u/1-a.png", p)
	assert.NoError(t, mock.ExpectationsWereMet())
}
