package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/model"
	"github.com/unclebandit/framestorm-backend/internal/service"
)

// MockSocialRepo stores one account per owner and platform
type MockSocialRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.SocialAccount
	inserts  int
	updates  int
}

func newMockSocialRepo() *MockSocialRepo {
	return &MockSocialRepo{accounts: map[string]*model.SocialAccount{}}
}

func (m *MockSocialRepo) GetByOwnerPlatform(ctx context.Context, ownerID string, platform model.Platform) (*model.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[ownerID+"/"+string(platform)]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *MockSocialRepo) Insert(ctx context.Context, a *model.SocialAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	a.ID = "acct-" + string(a.Platform)
	cp := *a
	m.accounts[a.OwnerID+"/"+string(a.Platform)] = &cp
	return nil
}

func (m *MockSocialRepo) Update(ctx context.Context, a *model.SocialAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	key := a.OwnerID + "/" + string(a.Platform)
	if _, ok := m.accounts[key]; !ok {
		return errors.New("not found")
	}
	cp := *a
	m.accounts[key] = &cp
	return nil
}

type recordedWait struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordedWait) wait(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func newSocialService() (*service.SocialService, *MockSocialRepo, *recordedWait, *MockEmitter) {
	repo := newMockSocialRepo()
	w := &recordedWait{}
	events := &MockEmitter{}
	return &service.SocialService{
		Repo:        repo,
		Events:      events,
		UploadDelay: 2 * time.Second,
		Wait:        w.wait,
	}, repo, w, events
}

func TestSaveAccountInsertsDisconnected(t *testing.T) {
	svc, repo, _, events := newSocialService()

	a, err := svc.SaveAccount(context.Background(), "user-1", model.PlatformInstagram, "  demo ", "")
	require.NoError(t, err)

	assert.Equal(t, "demo", a.Username)
	assert.False(t, a.Connected)
	assert.Nil(t, a.AccountID)
	assert.Equal(t, 1, repo.inserts)

	loaded, err := svc.LoadAccount(context.Background(), "user-1", model.PlatformInstagram)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "demo", loaded.Username)
	assert.False(t, loaded.Connected)
	assert.Equal(t, []string{model.ActivityAccountSaved}, events.Kinds())
}

func TestSaveAccountUpdatesExisting(t *testing.T) {
	svc, repo, _, _ := newSocialService()
	ctx := context.Background()

	_, err := svc.SaveAccount(ctx, "user-1", model.PlatformYouTube, "first", "UC123")
	require.NoError(t, err)
	a, err := svc.SaveAccount(ctx, "user-1", model.PlatformYouTube, "second", "")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.inserts)
	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, "second", a.Username)
	assert.Nil(t, a.AccountID)
	assert.False(t, a.Connected)
}

func TestSaveAccountRequiresUsername(t *testing.T) {
	svc, repo, _, _ := newSocialService()

	_, err := svc.SaveAccount(context.Background(), "user-1", model.PlatformLinkedIn, "   ", "x")
	var verr *appErrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)
	assert.Zero(t, repo.inserts)
}

func TestAttemptUploadWithoutAccount(t *testing.T) {
	svc, _, w, events := newSocialService()

	start := time.Now()
	_, err := svc.AttemptUpload(context.Background(), "user-1", model.PlatformYouTube)
	assert.True(t, appErrors.IsPrecondition(err))
	assert.Contains(t, err.Error(), "no account configured")
	assert.Empty(t, w.waits)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Empty(t, events.Kinds())
}

func TestAttemptUploadEndsAuthenticationPending(t *testing.T) {
	svc, _, w, events := newSocialService()
	ctx := context.Background()
	_, err := svc.SaveAccount(ctx, "user-1", model.PlatformYouTube, "acme", "")
	require.NoError(t, err)

	out, err := svc.AttemptUpload(ctx, "user-1", model.PlatformYouTube)
	require.NoError(t, err)

	assert.Equal(t, service.UploadStatusAuthPending, out.Status)
	assert.Equal(t, "acme", out.Username)
	assert.Contains(t, out.Message, "acme")
	assert.Equal(t, []time.Duration{2 * time.Second}, w.waits)
	assert.Equal(t, []string{model.ActivityAccountSaved, model.ActivityUploadAttempted}, events.Kinds())

	a, err := svc.LoadAccount(ctx, "user-1", model.PlatformYouTube)
	require.NoError(t, err)
	assert.False(t, a.Connected)
}

func TestAttemptUploadHonoursCancellation(t *testing.T) {
	svc, _, _, _ := newSocialService()
	svc.Wait = nil
	svc.UploadDelay = time.Hour
	_, err := svc.SaveAccount(context.Background(), "user-1", model.PlatformLinkedIn, "acme", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.AttemptUpload(ctx, "user-1", model.PlatformLinkedIn)
	assert.ErrorIs(t, err, context.Canceled)
}
