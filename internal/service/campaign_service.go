package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/metrics"
	"github.com/unclebandit/framestorm-backend/internal/model"
	"github.com/unclebandit/framestorm-backend/internal/queue"
	"github.com/unclebandit/framestorm-backend/internal/repository"
	"github.com/unclebandit/framestorm-backend/internal/storage"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Blobs        storage.BlobStore
	Events       queue.Emitter
	Now          func() time.Time
}

// Attachment is a file selected for upload with a new campaign.
type Attachment struct {
	Name     string
	MIMEType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type CreateCampaignInput struct {
	Title          string       `json:"title" validate:"notblank"`
	Description    string       `json:"description"`
	Type           string       `json:"type" validate:"required,oneof=video blog instagram"`
	TargetAudience string       `json:"target_audience"`
	Attachments    []Attachment `json:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError converts the first failed rule into a ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.NewValidation("", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "notblank", "required":
		return appErrors.NewValidation(fe.Field(), "is required")
	case "oneof":
		return appErrors.NewValidation(fe.Field(), "must be one of "+fe.Param())
	}
	return appErrors.NewValidation(fe.Field(), "is invalid")
}

func (s *CampaignService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateCampaign uploads the attachments in order and then writes the campaign
// record. Blobs already written stay in place if a later step fails.
func (s *CampaignService) CreateCampaign(ctx context.Context, ownerID string, in CreateCampaignInput) (*model.Campaign, error) {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	campaignType, err := model.ParseCampaignType(in.Type)
	if err != nil {
		return nil, appErrors.NewValidation("type", err.Error())
	}

	log := logger.Get("campaign").WithFields(logrus.Fields{"owner": ownerID, "type": campaignType})

	media := make(model.MediaFiles, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		mf, err := s.upload(ctx, ownerID, a)
		if err != nil {
			log.WithError(err).WithField("file", a.Name).Warn("attachment upload failed")
			return nil, appErrors.NewStorage("upload "+a.Name, err)
		}
		media = append(media, mf)
	}

	c := &model.Campaign{
		OwnerID:        ownerID,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Type:           campaignType,
		TargetAudience: strings.TrimSpace(in.TargetAudience),
		MediaFiles:     media,
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		log.WithError(err).WithField("uploaded", len(media)).Error("campaign record write failed")
		return nil, appErrors.NewStorage("create campaign", err)
	}

	metrics.RecordCampaignCreated(string(c.Type))
	log.WithField("campaign_id", c.ID).Info("campaign created")
	if s.Events != nil {
		id := c.ID
		s.Events.Emit(model.ActivityEvent{
			OwnerID:    ownerID,
			CampaignID: &id,
			Kind:       model.ActivityCampaignCreated,
			Detail:     model.ActivityDetail{"title": c.Title, "type": string(c.Type), "media_files": len(media)},
			Tags:       []string{string(c.Type)},
		})
	}
	return c, nil
}

func (s *CampaignService) upload(ctx context.Context, ownerID string, a Attachment) (model.MediaFile, error) {
	if a.Open == nil {
		return model.MediaFile{}, fmt.Errorf("attachment %s has no content", a.Name)
	}
	body, err := a.Open()
	if err != nil {
		return model.MediaFile{}, err
	}
	defer body.Close()

	p, err := s.Blobs.Upload(ctx, storage.ObjectPath(ownerID, s.now(), a.Name), a.MIMEType, body)
	if err != nil {
		return model.MediaFile{}, err
	}
	return model.MediaFile{Name: a.Name, Path: p, MIMEType: a.MIMEType, Size: a.Size}, nil
}

// ListForOwner returns the owner's campaigns, newest first.
func (s *CampaignService) ListForOwner(ctx context.Context, ownerID string) ([]model.Campaign, error) {
	campaigns, err := s.CampaignRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.NewStorage("list campaigns", err)
	}
	return campaigns, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, ownerID, id)
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, ownerID string, page, pageSize int, campaignType string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if campaignType != "" {
		t, err := model.ParseCampaignType(campaignType)
		if err != nil {
			return nil, nil, appErrors.NewValidation("type", err.Error())
		}
		campaignType = string(t)
	}
	offset := (page - 1) * pageSize

	campaigns, total, err := s.CampaignRepo.ListCampaigns(ctx, ownerID, offset, pageSize, campaignType)
	if err != nil {
		return nil, nil, appErrors.NewStorage("list campaigns", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}
