// Package generator produces GeneratedContent for a prompt.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/unclebandit/framestorm-backend/internal/content"
	"github.com/unclebandit/framestorm-backend/internal/model"
)

// Attachment is a file sent along with a prompt. It is not persisted.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

type Request struct {
	Type        model.CampaignType
	Prompt      string
	Campaign    model.Campaign
	Attachments []Attachment
}

// Generator turns a prompt into content whose tag equals Request.Type.
type Generator interface {
	Generate(ctx context.Context, req Request) (content.Content, error)
}

// Delays is the simulated processing time per campaign type.
type Delays struct {
	Video     time.Duration
	Blog      time.Duration
	Instagram time.Duration
}

// DefaultDelays mirror the latency profile of the real generation backend.
var DefaultDelays = Delays{
	Video:     6 * time.Second,
	Blog:      3 * time.Second,
	Instagram: 4 * time.Second,
}

func (d Delays) For(t model.CampaignType) (time.Duration, error) {
	switch t {
	case model.CampaignVideo:
		return d.Video, nil
	case model.CampaignBlog:
		return d.Blog, nil
	case model.CampaignInstagram:
		return d.Instagram, nil
	}
	return 0, fmt.Errorf("unknown campaign type %q", t)
}

// Simulated waits the configured delay and returns placeholder content.
type Simulated struct {
	Delays  Delays
	Catalog *Catalog

	// Wait defaults to a context-aware timer.
	Wait func(ctx context.Context, d time.Duration) error
}

func NewSimulated(delays Delays, catalog *Catalog) *Simulated {
	return &Simulated{Delays: delays, Catalog: catalog}
}

func (s *Simulated) Generate(ctx context.Context, req Request) (content.Content, error) {
	delay, err := s.Delays.For(req.Type)
	if err != nil {
		return nil, err
	}

	wait := s.Wait
	if wait == nil {
		wait = Sleep
	}
	if err := wait(ctx, delay); err != nil {
		return nil, err
	}

	return s.Catalog.Placeholder(req)
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
