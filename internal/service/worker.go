package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/model"
	"github.com/unclebandit/framestorm-backend/internal/repository"
)

// ActivityRecorder stores activity events taken off the queue
type ActivityRecorder struct {
	Repo    repository.ActivityRepositoryInterface
	Timeout time.Duration
}

// Constructor
func NewActivityRecorder(repo repository.ActivityRepositoryInterface) *ActivityRecorder {
	return &ActivityRecorder{Repo: repo, Timeout: 5 * time.Second}
}

// Handle accepts an in-process event or a JSON body from the broker. A
// payload that cannot be decoded is dropped; a storage error is returned so
// the queue retries.
func (r *ActivityRecorder) Handle(payload any) error {
	log := logger.Get("activity")

	var ev model.ActivityEvent
	switch p := payload.(type) {
	case model.ActivityEvent:
		ev = p
	case *model.ActivityEvent:
		if p == nil {
			return nil
		}
		ev = *p
	case []byte:
		if err := json.Unmarshal(p, &ev); err != nil {
			log.WithError(err).Warn("invalid activity payload")
			return nil
		}
	default:
		log.Warnf("unexpected activity payload type %T", payload)
		return nil
	}
	if ev.OwnerID == "" || ev.Kind == "" {
		log.WithField("id", ev.ID).Warn("activity event without owner or kind")
		return nil
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := r.Repo.Insert(ctx, &ev); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"id": ev.ID, "kind": ev.Kind, "owner": ev.OwnerID}).Debug("activity recorded")
	return nil
}

// List returns the newest events recorded for a campaign.
func (r *ActivityRecorder) List(ctx context.Context, ownerID, campaignID string, limit int) ([]model.ActivityEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.Repo.ListByCampaign(ctx, ownerID, campaignID, limit)
}
