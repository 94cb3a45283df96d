// Package dashboard keeps one in-memory session per signed-in owner: the
// active campaign, the selected tab and the generation state machine.
//
// Generated content lives only in the session. It is never persisted and is
// gone once the session is closed, replaced or swept.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/unclebandit/framestorm-backend/internal/content"
	appErrors "github.com/unclebandit/framestorm-backend/internal/errors"
	"github.com/unclebandit/framestorm-backend/internal/generator"
	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/metrics"
	"github.com/unclebandit/framestorm-backend/internal/model"
	"github.com/unclebandit/framestorm-backend/internal/queue"
)

type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
)

// CampaignLoader lists an owner's campaigns, newest first.
type CampaignLoader interface {
	ListForOwner(ctx context.Context, ownerID string) ([]model.Campaign, error)
}

// Snapshot is a copy of a session taken under its lock.
type Snapshot struct {
	Owner          string             `json:"owner"`
	NoCampaign     bool               `json:"no_campaign"`
	ActiveCampaign *model.Campaign    `json:"active_campaign,omitempty"`
	Campaigns      []model.Campaign   `json:"campaigns"`
	Tab            model.CampaignType `json:"tab,omitempty"`
	State          State              `json:"state"`
	Prompt         string             `json:"prompt,omitempty"`
	LastError      string             `json:"last_error,omitempty"`
	Content        content.Content    `json:"content,omitempty"`
	View           content.View       `json:"view"`
}

type session struct {
	mu sync.Mutex

	owner     string
	campaigns []model.Campaign
	active    *model.Campaign
	tab       model.CampaignType
	state     State
	prompt    string
	lastError string
	content   content.Content

	// generation identifies the run whose result may still be applied.
	generation uint64
	done       chan struct{}
	closed     bool
	touched    time.Time
}

// Manager owns the sessions. m.mu is never acquired while a session lock is
// held.
type Manager struct {
	Loader    CampaignLoader
	Generator generator.Generator
	Events    queue.Emitter
	Now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	running  sync.WaitGroup
	log      *logrus.Logger
}

func NewManager(loader CampaignLoader, gen generator.Generator, events queue.Emitter) *Manager {
	return &Manager{
		Loader:    loader,
		Generator: gen,
		Events:    events,
		sessions:  make(map[string]*session),
		log:       logger.Get("dashboard"),
	}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Open loads the owner's campaigns and starts a fresh session, replacing any
// previous one. requestedID becomes active when it names one of the owner's
// campaigns; otherwise the newest campaign does. An owner without campaigns
// gets a NoCampaign snapshot.
func (m *Manager) Open(ctx context.Context, ownerID, requestedID string) (Snapshot, error) {
	campaigns, err := m.Loader.ListForOwner(ctx, ownerID)
	if err != nil {
		return Snapshot{}, err
	}

	s := &session{
		owner:     ownerID,
		campaigns: campaigns,
		state:     StateIdle,
		touched:   m.now(),
	}
	if len(campaigns) > 0 {
		active := campaigns[0]
		for _, c := range campaigns {
			if requestedID != "" && c.ID == requestedID {
				active = c
				break
			}
		}
		s.active = &active
		s.tab = active.Type
	}

	m.mu.Lock()
	if m.sessions == nil {
		m.sessions = make(map[string]*session)
	}
	old := m.sessions[ownerID]
	m.sessions[ownerID] = s
	m.mu.Unlock()

	if old != nil {
		old.discard()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

func (m *Manager) session(ownerID string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[ownerID]
	if !ok {
		return nil, appErrors.NewPrecondition("no dashboard session; open the dashboard first")
	}
	return s, nil
}

func (m *Manager) Get(ownerID string) (Snapshot, error) {
	s, err := m.session(ownerID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = m.now()
	return s.snapshotLocked(), nil
}

// SetTab switches the content type shown for the active campaign. Switching
// to another tab clears the content and returns to idle.
func (m *Manager) SetTab(ownerID, tab string) (Snapshot, error) {
	t, err := model.ParseCampaignType(tab)
	if err != nil {
		return Snapshot{}, appErrors.NewValidation("tab", err.Error())
	}
	s, err := m.session(ownerID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = m.now()
	if s.active == nil {
		return Snapshot{}, appErrors.NewPrecondition("no active campaign")
	}
	if s.state == StateGenerating {
		return Snapshot{}, appErrors.ErrGenerationInFlight
	}
	if t != s.tab {
		s.tab = t
		s.content = nil
		s.state = StateIdle
		s.lastError = ""
	}
	return s.snapshotLocked(), nil
}

// Submit starts generating content of the active tab's type. The returned
// snapshot is already in the generating state. The run is detached from ctx
// cancellation and its result is dropped if the session goes away first.
func (m *Manager) Submit(ctx context.Context, ownerID, prompt string, attachments []generator.Attachment) (Snapshot, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Snapshot{}, appErrors.NewValidation("prompt", "Please describe what you want to create")
	}
	s, err := m.session(ownerID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.touched = m.now()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, appErrors.NewPrecondition("dashboard session was closed")
	}
	if s.active == nil {
		s.mu.Unlock()
		return Snapshot{}, appErrors.NewPrecondition("no active campaign")
	}
	if s.state == StateGenerating {
		s.mu.Unlock()
		return Snapshot{}, appErrors.ErrGenerationInFlight
	}

	s.state = StateGenerating
	s.content = nil
	s.prompt = prompt
	s.lastError = ""
	s.generation++
	run := s.generation
	done := make(chan struct{})
	s.done = done
	req := generator.Request{
		Type:        s.tab,
		Prompt:      prompt,
		Campaign:    *s.active,
		Attachments: attachments,
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	m.log.WithFields(logrus.Fields{"owner": ownerID, "campaign_id": req.Campaign.ID, "type": req.Type}).Info("generation started")

	m.running.Add(1)
	go m.run(context.WithoutCancel(ctx), s, run, done, req)
	return snap, nil
}

func (m *Manager) run(ctx context.Context, s *session, run uint64, done chan struct{}, req generator.Request) {
	defer m.running.Done()
	start := time.Now()

	c, err := m.generate(ctx, req)
	if err == nil && (c == nil || c.Type() != req.Type) {
		got := "none"
		if c != nil {
			got = string(c.Type())
		}
		err = fmt.Errorf("%w: got %s, want %s", content.ErrTypeMismatch, got, req.Type)
		c = nil
	}

	s.mu.Lock()
	current := !s.closed && s.generation == run
	if current {
		if err != nil {
			s.state = StateIdle
			s.lastError = err.Error()
		} else {
			s.state = StateReady
			s.content = c
			s.prompt = ""
		}
		s.done = nil
	}
	close(done)
	s.mu.Unlock()

	status := "success"
	switch {
	case !current:
		status = "superseded"
	case err != nil:
		status = "failure"
	}
	metrics.RecordGeneration(string(req.Type), status, time.Since(start).Seconds())

	log := m.log.WithFields(logrus.Fields{"owner": s.owner, "campaign_id": req.Campaign.ID, "type": req.Type, "status": status})
	if !current {
		log.Info("generation result dropped")
		return
	}

	campaignID := req.Campaign.ID
	ev := model.ActivityEvent{
		OwnerID:    s.owner,
		CampaignID: &campaignID,
		Kind:       model.ActivityContentGenerated,
		Detail:     model.ActivityDetail{"type": string(req.Type), "prompt": req.Prompt},
		Tags:       []string{string(req.Type)},
	}
	if err != nil {
		log.WithError(err).Warn("generation failed")
		ev.Kind = model.ActivityContentFailed
		ev.Detail["error"] = err.Error()
	} else {
		log.Info("generation finished")
	}
	if m.Events != nil {
		m.Events.Emit(ev)
	}
}

// generate turns a generator panic into an error so the session still
// leaves the generating state.
func (m *Manager) generate(ctx context.Context, req generator.Request) (c content.Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			c = nil
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()
	return m.Generator.Generate(ctx, req)
}

// Await blocks until the owner's session is no longer generating or ctx is
// done, and returns the latest snapshot either way.
func (m *Manager) Await(ctx context.Context, ownerID string) (Snapshot, error) {
	s, err := m.session(ownerID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = m.now()
	return s.snapshotLocked(), nil
}

// Close discards the owner's session. A generation still running for it
// finishes unobserved.
func (m *Manager) Close(ownerID string) bool {
	m.mu.Lock()
	s, ok := m.sessions[ownerID]
	delete(m.sessions, ownerID)
	m.mu.Unlock()

	if ok {
		s.discard()
	}
	return ok
}

// Sweep closes sessions untouched for longer than ttl and returns how many
// were closed.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	var stale []*session
	for owner, s := range m.sessions {
		s.mu.Lock()
		expired := s.touched.Before(cutoff)
		s.mu.Unlock()
		if expired {
			delete(m.sessions, owner)
			stale = append(stale, s)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.discard()
	}
	return len(stale)
}

// ScheduleSweep registers Sweep on c using a cron spec such as "@every 5m".
func (m *Manager) ScheduleSweep(c *cron.Cron, spec string, ttl time.Duration) error {
	_, err := c.AddFunc(spec, func() {
		if n := m.Sweep(ttl); n > 0 {
			m.log.WithField("sessions", n).Info("swept idle dashboard sessions")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	return nil
}

// Wait blocks until every generation started so far has finished.
func (m *Manager) Wait() {
	m.running.Wait()
}

func (s *session) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Owner:      s.owner,
		NoCampaign: s.active == nil,
		Campaigns:  append([]model.Campaign(nil), s.campaigns...),
		Tab:        s.tab,
		State:      s.state,
		Prompt:     s.prompt,
		LastError:  s.lastError,
		Content:    s.content,
	}
	if snap.Campaigns == nil {
		snap.Campaigns = []model.Campaign{}
	}
	if s.active != nil {
		active := *s.active
		snap.ActiveCampaign = &active
		snap.View = content.Render(s.tab, s.content, s.state == StateGenerating)
	} else {
		snap.View = content.EmptyDashboard()
	}
	return snap
}
