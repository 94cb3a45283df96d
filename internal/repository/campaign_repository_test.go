package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return sqlx.NewDb(conn, "postgres"), mock
}

var campaignCols = []string{"id", "owner_id", "title", "description", "campaign_type", "target_audience", "media_files", "created_at"}

func TestCampaignCreateWritesEmptyMediaArray(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaigns")).
		WithArgs(sqlmock.AnyArg(), "user-1", "Launch", "", "blog", "", []byte("[]"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c := &model.Campaign{OwnerID: "user-1", Title: "Launch", Type: model.CampaignBlog}
	require.NoError(t, repo.Create(context.Background(), c))

	assert.NotEmpty(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.NotNil(t, c.MediaFiles)
	assert.Len(t, c.MediaFiles, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignCreateWrapsDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaigns")).WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &model.Campaign{OwnerID: "user-1", Title: "Launch", Type: model.CampaignVideo})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestListByOwnerNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CampaignRepository{DB: db}

	t3 := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	t2 := t3.Add(-24 * time.Hour)
	rows := sqlmock.NewRows(campaignCols).
		AddRow("c3", "user-1", "Third", "", "video", "", []byte(`[]`), t3).
		AddRow("c2", "user-1", "Second", "", "blog", "", []byte(`[{"name":"a.png","path":"user-1/1-a.png","type":"image/png","size":3}]`), t2)

	mock.ExpectQuery(`FROM campaigns WHERE owner_id=\$1 ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c3", got[0].ID)
	assert.Equal(t, model.CampaignVideo, got[0].Type)
	assert.Equal(t, model.MediaFiles{{Name: "a.png", Path: "user-1/1-a.png", MIMEType: "image/png", Size: 3}}, got[1].MediaFiles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CampaignRepository{DB: db}

	id := "8d3c3c9e-4f57-4c1b-9a51-0c1d2f3e4a5b"
	mock.ExpectQuery(`FROM campaigns WHERE id=\$1 AND owner_id=\$2`).
		WithArgs(id, "user-1").
		WillReturnRows(sqlmock.NewRows(campaignCols))

	_, err := repo.GetByID(context.Background(), "user-1", id)
	assert.True(t, appErrors.IsNotFound(err))

	_, err = repo.GetByID(context.Background(), "user-1", "not-a-uuid")
	assert.True(t, appErrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCampaignsFiltersByType(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectQuery(`WHERE owner_id=\$1 AND campaign_type=\$2 ORDER BY created_at DESC, id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("user-1", "blog", 20, 0).
		WillReturnRows(sqlmock.NewRows(campaignCols).
			AddRow("c1", "user-1", "Post", "", "blog", "", []byte(`[]`), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM campaigns WHERE owner_id=$1 AND campaign_type=$2")).
		WithArgs("user-1", "blog").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	got, total, err := repo.ListCampaigns(context.Background(), "user-1", 0, 20, "blog")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
