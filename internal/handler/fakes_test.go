package handler

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andres10976/webspider/backend/internal/model"
	"github.com/andres10976/webspider/backend/internal/repository"
	"github.com/andres10976/webspider/backend/internal/service/events"
	"github.com/andres10976/webspider/backend/internal/service/webhook"
)

// memMonitorStore mirrors the owner-scoped semantics of the SQL
// repository: a mutation only matches when both id and owner match.
type memMonitorStore struct {
	mu       sync.Mutex
	monitors map[string]model.Monitor
	nextID   int
	err      error
}

func newMemMonitorStore(seed ...model.Monitor) *memMonitorStore {
	s := &memMonitorStore{monitors: make(map[string]model.Monitor)}
	for _, m := range seed {
		s.monitors[m.ID] = m
	}
	return s
}

func (s *memMonitorStore) get(id string) (model.Monitor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.monitors[id]
	return m, ok
}

func (s *memMonitorStore) ListAll(ctx context.Context) ([]model.Monitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Monitor
	for _, m := range s.monitors {
		out = append(out, m)
	}
	return out, nil
}

func (s *memMonitorStore) ListByOwner(ctx context.Context, ownerEmail string) ([]model.Monitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Monitor
	for _, m := range s.monitors {
		if m.UserEmail == ownerEmail {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memMonitorStore) Create(ctx context.Context, ownerEmail string, cfg *model.MonitorConfig, limit int) (*model.Monitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 {
		owned := 0
		for _, m := range s.monitors {
			if m.UserEmail == ownerEmail {
				owned++
			}
		}
		if owned >= limit {
			return nil, repository.ErrLimitReached
		}
	}
	s.nextID++
	m := model.Monitor{ID: "mon-" + strconv.Itoa(s.nextID), UserEmail: ownerEmail, CreatedAt: time.Now()}
	applyConfig(&m, cfg)
	s.monitors[m.ID] = m
	return &m, nil
}

func (s *memMonitorStore) UpdateOwned(ctx context.Context, id, ownerEmail string, cfg *model.MonitorConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	m, ok := s.monitors[id]
	if !ok || m.UserEmail != ownerEmail {
		return repository.ErrNotFound
	}
	applyConfig(&m, cfg)
	s.monitors[id] = m
	return nil
}

func (s *memMonitorStore) SetPaused(ctx context.Context, id string, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	m, ok := s.monitors[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.IsPaused = paused
	s.monitors[id] = m
	return nil
}

func (s *memMonitorStore) DeleteOwned(ctx context.Context, id, ownerEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	m, ok := s.monitors[id]
	if !ok || m.UserEmail != ownerEmail {
		return repository.ErrNotFound
	}
	delete(s.monitors, id)
	return nil
}

func applyConfig(m *model.Monitor, cfg *model.MonitorConfig) {
	m.URL = cfg.URL
	m.AIFocusNote = cfg.AIFocusNote
	m.CustomWebhookURL = cfg.CustomWebhookURL
	m.TriggerModeEnabled = cfg.TriggerModeEnabled
	m.VisualModeEnabled = cfg.VisualModeEnabled
	m.DeepCrawl = cfg.DeepCrawl
	m.DeepCrawlDepth = cfg.DeepCrawlDepth
	m.CheckFrequency = cfg.CheckFrequency
	m.RequiresLogin = cfg.RequiresLogin
	m.HasCaptcha = cfg.HasCaptcha
	m.Username = cfg.Username
	m.Password = cfg.Password
	m.CaptchaJSON = cfg.CaptchaJSON
	m.EmailNotificationsEnabled = cfg.EmailNotificationsEnabled
	m.TelegramNotificationsEnabled = cfg.TelegramNotificationsEnabled
	m.TelegramChatID = cfg.TelegramChatID
	m.LastUpdatedTimestamp = time.Now()
}

// memAlertStore keeps at most one alert per target.
type memAlertStore struct {
	mu     sync.Mutex
	alerts map[string]model.Alert
	err    error
}

func newMemAlertStore() *memAlertStore {
	return &memAlertStore{alerts: make(map[string]model.Alert)}
}

func (s *memAlertStore) Upsert(ctx context.Context, targetEmail, message string, isActive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.alerts[targetEmail] = model.Alert{
		TargetEmail: targetEmail,
		Message:     message,
		IsActive:    isActive,
		UpdatedAt:   time.Now(),
	}
	return nil
}

func (s *memAlertStore) ListActiveFor(ctx context.Context, userEmail string) ([]model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Alert
	for _, a := range s.alerts {
		if a.IsActive && (a.TargetEmail == userEmail || a.TargetEmail == model.BroadcastTarget) {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	err     error
	changes []events.Change
}

func (p *recordingPublisher) Publish(ctx context.Context, c events.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.changes))
	for i, c := range p.changes {
		out[i] = c.Action
	}
	return out
}

type stubGate struct {
	admin string
}

func (g stubGate) IsAdmin(email string) bool {
	return g.admin != "" && strings.EqualFold(strings.TrimSpace(email), g.admin)
}

type mockReconciler struct {
	reconcileFn func(ctx context.Context) (*webhook.Result, error)
}

func (m *mockReconciler) Reconcile(ctx context.Context) (*webhook.Result, error) {
	return m.reconcileFn(ctx)
}

type mockPinger struct {
	err error
}

func (m mockPinger) Ping(ctx context.Context) error { return m.err }
