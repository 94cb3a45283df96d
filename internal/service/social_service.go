package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/generator"
	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/metrics"
	"github.com/unclebandit/framestorm-backend/internal/model"
	"github.com/unclebandit/framestorm-backend/internal/queue"
	"github.com/unclebandit/framestorm-backend/internal/repository"
)

// UploadStatusAuthPending is the only outcome an upload attempt can have
// until an OAuth flow exists for the platforms.
const UploadStatusAuthPending = "authentication_pending"

type UploadOutcome struct {
	Status   string         `json:"status"`
	Platform model.Platform `json:"platform"`
	Username string         `json:"username"`
	Message  string         `json:"message"`
}

type SocialService struct {
	Repo        repository.SocialAccountRepositoryInterface
	Events      queue.Emitter
	UploadDelay time.Duration
	Wait        func(ctx context.Context, d time.Duration) error
}

func (s *SocialService) LoadAccount(ctx context.Context, ownerID string, platform model.Platform) (*model.SocialAccount, error) {
	a, err := s.Repo.GetByOwnerPlatform(ctx, ownerID, platform)
	if err != nil {
		return nil, appErrors.NewStorage("load social account", err)
	}
	return a, nil
}

// SaveAccount creates or updates the owner's account for platform. The
// account is always stored as not connected.
func (s *SocialService) SaveAccount(ctx context.Context, ownerID string, platform model.Platform, username, accountID string) (*model.SocialAccount, error) {
	username = strings.TrimSpace(username)
	accountID = strings.TrimSpace(accountID)
	if username == "" {
		return nil, appErrors.NewValidation("username", "Please enter your username")
	}

	var acctID *string
	if accountID != "" {
		acctID = &accountID
	}

	existing, err := s.Repo.GetByOwnerPlatform(ctx, ownerID, platform)
	if err != nil {
		return nil, appErrors.NewStorage("load social account", err)
	}

	if existing != nil {
		existing.Username = username
		existing.AccountID = acctID
		existing.Connected = false
		if err := s.Repo.Update(ctx, existing); err != nil {
			return nil, appErrors.NewStorage("update social account", err)
		}
	} else {
		existing = &model.SocialAccount{
			OwnerID:   ownerID,
			Platform:  platform,
			Username:  username,
			AccountID: acctID,
		}
		if err := s.Repo.Insert(ctx, existing); err != nil {
			return nil, appErrors.NewStorage("insert social account", err)
		}
	}

	logger.Get("social").WithFields(logrus.Fields{"owner": ownerID, "platform": platform}).Info("social account saved")
	if s.Events != nil {
		s.Events.Emit(model.ActivityEvent{
			OwnerID: ownerID,
			Kind:    model.ActivityAccountSaved,
			Detail:  model.ActivityDetail{"platform": string(platform), "username": username},
			Tags:    []string{string(platform)},
		})
	}
	return existing, nil
}

// AttemptUpload simulates handing content to the platform. Without a stored
// account it fails immediately; otherwise it always ends pending
// authentication.
func (s *SocialService) AttemptUpload(ctx context.Context, ownerID string, platform model.Platform) (*UploadOutcome, error) {
	a, err := s.Repo.GetByOwnerPlatform(ctx, ownerID, platform)
	if err != nil {
		return nil, appErrors.NewStorage("load social account", err)
	}
	if a == nil {
		metrics.RecordUploadAttempt(string(platform), "no_account")
		return nil, appErrors.NewPrecondition("no account configured")
	}

	wait := s.Wait
	if wait == nil {
		wait = generator.Sleep
	}
	if err := wait(ctx, s.UploadDelay); err != nil {
		return nil, err
	}

	metrics.RecordUploadAttempt(string(platform), UploadStatusAuthPending)
	outcome := &UploadOutcome{
		Status:   UploadStatusAuthPending,
		Platform: platform,
		Username: a.Username,
		Message: fmt.Sprintf("Authentication pending for %s. Please complete the OAuth flow to enable content uploads.",
			a.Username),
	}
	if s.Events != nil {
		s.Events.Emit(model.ActivityEvent{
			OwnerID: ownerID,
			Kind:    model.ActivityUploadAttempted,
			Detail:  model.ActivityDetail{"platform": string(platform), "status": outcome.Status},
			Tags:    []string{string(platform)},
		})
	}
	return outcome, nil
}
