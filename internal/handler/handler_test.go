package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/handler"
	"github.com/unclebandit/framestorm-backend/internal/model"
	"github.com/unclebandit/framestorm-backend/internal/service"
	"github.com/unclebandit/framestorm-backend/internal/session"
)

type MockCampaignRepo struct {
	campaign model.Campaign
}

func (m *MockCampaignRepo) Create(ctx context.Context, c *model.Campaign) error { return nil }
func (m *MockCampaignRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	if id != m.campaign.ID || ownerID != m.campaign.OwnerID {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	c := m.campaign
	return &c, nil
}
func (m *MockCampaignRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Campaign, error) {
	return nil, nil
}
func (m *MockCampaignRepo) ListCampaigns(ctx context.Context, ownerID string, offset, limit int, campaignType string) ([]model.Campaign, int, error) {
	return nil, 0, nil
}

type MockActivityRepo struct {
	events []model.ActivityEvent
}

func (m *MockActivityRepo) Insert(ctx context.Context, ev *model.ActivityEvent) error {
	m.events = append(m.events, *ev)
	return nil
}

func (m *MockActivityRepo) ListByCampaign(ctx context.Context, ownerID, campaignID string, limit int) ([]model.ActivityEvent, error) {
	return m.events, nil
}

func activityRequest(owner, campaignID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/campaigns/"+campaignID+"/activity", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", campaignID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = session.WithIdentity(ctx, session.Identity{OwnerID: owner})
	return req.WithContext(ctx)
}

func TestListCampaignActivity(t *testing.T) {
	id := "c1"
	activity := &MockActivityRepo{events: []model.ActivityEvent{
		{ID: "e1", OwnerID: "user-1", CampaignID: &id, Kind: model.ActivityCampaignCreated},
	}}
	h := &handler.ActivityHandler{
		Campaigns: &service.CampaignService{CampaignRepo: &MockCampaignRepo{campaign: model.Campaign{ID: "c1", OwnerID: "user-1"}}},
		Activity:  service.NewActivityRecorder(activity),
	}

	w := httptest.NewRecorder()
	h.ListCampaignActivity(w, activityRequest("user-1", "c1"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Events []model.ActivityEvent `json:"events"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].Kind != model.ActivityCampaignCreated {
		t.Errorf("unexpected events: %+v", resp.Events)
	}

	w = httptest.NewRecorder()
	h.ListCampaignActivity(w, activityRequest("user-2", "c1"))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another owner, got %d", w.Code)
	}
}

type pinger struct{ err error }

func (p pinger) PingContext(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	(&handler.Health{DB: pinger{}}).Database(w, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	(&handler.Health{DB: pinger{err: errors.New("down")}}).Database(w, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
