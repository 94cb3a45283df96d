package service_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/model"
	"github.com/unclebandit/framestorm-backend/internal/service"
)

// MockCampaignRepo keeps campaigns in memory
type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns []model.Campaign
	nextID    int
	createErr error
	listErr   error
	clock     time.Time
}

func (m *MockCampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	c.ID = string(rune('a'+m.nextID-1)) + "-campaign"
	if m.clock.IsZero() {
		m.clock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	m.clock = m.clock.Add(time.Minute)
	c.CreatedAt = m.clock
	m.campaigns = append(m.campaigns, *c)
	return nil
}

func (m *MockCampaignRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.ID == id && c.OwnerID == ownerID {
			c := c
			return &c, nil
		}
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

func (m *MockCampaignRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Campaign{}
	for _, c := range m.campaigns {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockCampaignRepo) ListCampaigns(ctx context.Context, ownerID string, offset, limit int, campaignType string) ([]model.Campaign, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	all, _ := m.ListByOwner(ctx, ownerID)
	if campaignType != "" {
		filtered := []model.Campaign{}
		for _, c := range all {
			if string(c.Type) == campaignType {
				filtered = append(filtered, c)
			}
		}
		all = filtered
	}
	if offset >= len(all) {
		return []model.Campaign{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

// MockBlobStore records uploads in order
type MockBlobStore struct {
	mu      sync.Mutex
	paths   []string
	bodies  []string
	failOn  string
	failErr error
}

func (m *MockBlobStore) Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.HasSuffix(objectPath, m.failOn) {
		return "", m.failErr
	}
	data, _ := io.ReadAll(body)
	m.paths = append(m.paths, objectPath)
	m.bodies = append(m.bodies, string(data))
	return objectPath, nil
}

// MockEmitter collects published activity
type MockEmitter struct {
	mu     sync.Mutex
	events []model.ActivityEvent
}

func (m *MockEmitter) Emit(ev model.ActivityEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *MockEmitter) Kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for _, e := range m.events {
		out = append(out, e.Kind)
	}
	return out
}

func file(name, mime, body string) service.Attachment {
	return service.Attachment{
		Name:     name,
		MIMEType: mime,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func newCampaignService() (*service.CampaignService, *MockCampaignRepo, *MockBlobStore, *MockEmitter) {
	repo := &MockCampaignRepo{}
	blobs := &MockBlobStore{}
	events := &MockEmitter{}
	fixed := time.UnixMilli(1717000000000)
	return &service.CampaignService{
		CampaignRepo: repo,
		Blobs:        blobs,
		Events:       events,
		Now:          func() time.Time { return fixed },
	}, repo, blobs, events
}

func TestCreateBlogCampaignWithoutMedia(t *testing.T) {
	svc, repo, blobs, events := newCampaignService()

	c, err := svc.CreateCampaign(context.Background(), "user-1", service.CreateCampaignInput{
		Title: "Launch",
		Type:  "blog",
	})
	require.NoError(t, err)

	assert.Equal(t, model.CampaignBlog, c.Type)
	assert.Equal(t, "Launch", c.Title)
	assert.NotNil(t, c.MediaFiles)
	assert.Empty(t, c.MediaFiles)
	assert.Empty(t, blobs.paths)
	assert.Len(t, repo.campaigns, 1)
	assert.Equal(t, []string{model.ActivityCampaignCreated}, events.Kinds())
}

func TestCreateCampaignUploadsInOrder(t *testing.T) {
	svc, _, blobs, _ := newCampaignService()

	c, err := svc.CreateCampaign(context.Background(), "user-1", service.CreateCampaignInput{
		Title:       "Reel",
		Type:        "instagram",
		Attachments: []service.Attachment{file("a.png", "image/png", "aaa"), file("b.mp4", "video/mp4", "bb")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"user-1/1717000000000-a.png", "user-1/1717000000000-b.mp4"}, blobs.paths)
	require.Len(t, c.MediaFiles, 2)
	assert.Equal(t, model.MediaFile{Name: "a.png", Path: "user-1/1717000000000-a.png", MIMEType: "image/png", Size: 3}, c.MediaFiles[0])
	assert.Equal(t, "b.mp4", c.MediaFiles[1].Name)
}

func TestCreateCampaignValidation(t *testing.T) {
	cases := []struct {
		name  string
		in    service.CreateCampaignInput
		field string
	}{
		{"blank title", service.CreateCampaignInput{Title: "   ", Type: "video"}, "title"},
		{"missing type", service.CreateCampaignInput{Title: "x"}, "type"},
		{"unknown type", service.CreateCampaignInput{Title: "x", Type: "podcast"}, "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, blobs, events := newCampaignService()
			_, err := svc.CreateCampaign(context.Background(), "user-1", service.CreateCampaignInput{
				Title:       tc.in.Title,
				Type:        tc.in.Type,
				Attachments: []service.Attachment{file("a.png", "image/png", "a")},
			})

			var verr *appErrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Empty(t, repo.campaigns)
			assert.Empty(t, blobs.paths)
			assert.Empty(t, events.Kinds())
		})
	}
}

func TestCreateCampaignUploadFailureStops(t *testing.T) {
	svc, repo, blobs, _ := newCampaignService()
	blobs.failOn = "b.png"
	blobs.failErr = errors.New("bucket unavailable")

	_, err := svc.CreateCampaign(context.Background(), "user-1", service.CreateCampaignInput{
		Title:       "x",
		Type:        "video",
		Attachments: []service.Attachment{file("a.png", "image/png", "a"), file("b.png", "image/png", "b"), file("c.png", "image/png", "c")},
	})
	assert.True(t, appErrors.IsStorage(err))
	assert.Len(t, blobs.paths, 1)
	assert.Empty(t, repo.campaigns)
}

func TestCreateCampaignRecordFailureKeepsBlobs(t *testing.T) {
	svc, repo, blobs, events := newCampaignService()
	repo.createErr = errors.New("db down")

	_, err := svc.CreateCampaign(context.Background(), "user-1", service.CreateCampaignInput{
		Title:       "x",
		Type:        "video",
		Attachments: []service.Attachment{file("a.png", "image/png", "a")},
	})
	assert.True(t, appErrors.IsStorage(err))
	assert.Len(t, blobs.paths, 1)
	assert.Empty(t, events.Kinds())
}

func TestListForOwnerNewestFirst(t *testing.T) {
	svc, _, _, _ := newCampaignService()
	ctx := context.Background()
	for _, title := range []string{"t1", "t2", "t3"} {
		_, err := svc.CreateCampaign(ctx, "user-1", service.CreateCampaignInput{Title: title, Type: "video"})
		require.NoError(t, err)
	}
	_, err := svc.CreateCampaign(ctx, "user-2", service.CreateCampaignInput{Title: "other", Type: "blog"})
	require.NoError(t, err)

	got, err := svc.ListForOwner(ctx, "user-1")
	require.NoError(t, err)
	titles := []string{}
	for _, c := range got {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{"t3", "t2", "t1"}, titles)
}

func TestGetCampaignOwnerScoped(t *testing.T) {
	svc, _, _, _ := newCampaignService()
	c, err := svc.CreateCampaign(context.Background(), "user-1", service.CreateCampaignInput{Title: "x", Type: "blog"})
	require.NoError(t, err)

	_, err = svc.GetCampaign(context.Background(), "user-2", c.ID)
	assert.True(t, appErrors.IsNotFound(err))
}
