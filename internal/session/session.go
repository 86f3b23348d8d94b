// Package session provides the per-session context object for the engine.
// All per-session mutable state (the directory cache, throttle timestamps,
// evaluation counters) lives on an explicit Session passed into operations
// and torn down with Close, so concurrent sessions stay independently
// testable and nothing leaks.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rufio-dev/rufio/internal/cache"
	"github.com/rufio-dev/rufio/internal/domain"
)

// Session carries the mutable state of one host session.
type Session struct {
	id        string
	createdAt time.Time

	configs *cache.LRUCache

	mu        sync.Mutex
	lastFired map[string]time.Time
	runs      int
	closed    bool
}

// New creates a session with a directory cache bounded to cacheSize entries
// (<= 0 selects the default bound).
func New(cacheSize int) *Session {
	return &Session{
		id:        uuid.New().String(),
		createdAt: time.Now(),
		configs:   cache.NewLRUCache(cacheSize),
		lastFired: make(map[string]time.Time),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Get implements loader.DirCache.
func (s *Session) Get(dir string) (*domain.LoadedConfig, bool) {
	return s.configs.Get(dir)
}

// Set implements loader.DirCache.
func (s *Session) Set(dir string, cfg *domain.LoadedConfig) {
	s.configs.Set(dir, cfg)
}

// InvalidateConfigs drops all cached configs, forcing fresh loads on the
// next evaluation. Hosts call this when they observe a config file change
// mid-session.
func (s *Session) InvalidateConfigs() {
	s.configs.Clear()
}

// CacheStats exposes directory-cache effectiveness for host diagnostics.
func (s *Session) CacheStats() cache.Stats {
	return s.configs.Stats()
}

// Throttle reports whether key fired within the given interval, recording
// the current time when it did not. Hosts use this to rate-limit status
// refreshes without keeping their own timestamp maps.
func (s *Session) Throttle(key string, interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if last, ok := s.lastFired[key]; ok && now.Sub(last) < interval {
		return true
	}
	s.lastFired[key] = now
	return false
}

// RecordRun increments the session's evaluation counter.
func (s *Session) RecordRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
}

// Runs returns how many evaluations this session has performed.
func (s *Session) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Close tears the session down. Further cache writes are pointless but
// harmless; Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.configs.Clear()
	s.lastFired = make(map[string]time.Time)

	log.Debug().Str("session", s.id).Int("runs", s.runs).Msg("Session closed")
}

// Manager tracks live sessions by ID so a host can route events to the
// right session and end them explicitly.
type Manager struct {
	mu        sync.Mutex
	cacheSize int
	sessions  map[string]*Session
}

// NewManager creates an empty session registry; cacheSize bounds each
// session's directory cache.
func NewManager(cacheSize int) *Manager {
	return &Manager{
		cacheSize: cacheSize,
		sessions:  make(map[string]*Session),
	}
}

// Acquire returns the session registered under hostID, creating it on first
// use.
func (m *Manager) Acquire(hostID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[hostID]; ok {
		return s
	}
	s := New(m.cacheSize)
	m.sessions[hostID] = s
	return s
}

// End closes and forgets the session registered under hostID.
func (m *Manager) End(hostID string) {
	m.mu.Lock()
	s, ok := m.sessions[hostID]
	delete(m.sessions, hostID)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
