// internal/store/memory.go
//
// In-memory session store for active hangman rounds.
// Each Session owns one game.Engine; sessions never share engine state.
//
// Characteristics:
//   - Sessions keyed by ID (uuid) in a map guarded by an RWMutex.
//   - Each Session has its own mutex: calls into one engine are strictly
//     sequential even when several requests for the same game race.
//   - Sessions idle for too long, or finished for a while, are expired by
//     the caller through Expired + Delete.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hangman/apps/go-server/internal/game"
)

var ErrNotFound = errors.New("store: session not found")

// Session is one player's game channel. Reset starts a fresh round on the
// same session.
type Session struct {
	ID       string
	Owner    string // user ID or anonymous ID
	Category string
	Daily    string // YYYY-MM-DD for daily rounds, empty otherwise

	mu       sync.Mutex
	engine   *game.Engine
	round    string // history row of the current round
	started  time.Time
	active   time.Time // last Start or Guess
	finished time.Time // zero while the round is playing
}

// NewSession wraps an engine under a fresh ID.
func NewSession(owner, category string, engine *game.Engine) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Owner:    owner,
		Category: category,
		engine:   engine,
		started:  time.Now(),
		active:   time.Now(),
	}
}

// Start begins a new round with pool and returns its round ID.
func (s *Session) Start(pool []string) (game.Snapshot, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.engine.Start(pool)
	if err != nil {
		return snap, s.round, err
	}
	s.round = uuid.NewString()
	s.started = time.Now()
	s.active = s.started
	s.finished = time.Time{}
	return snap, s.round, nil
}

// Round identifies the current round; it changes on every successful Start.
func (s *Session) Round() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// Guess forwards one letter to the engine. The round ID is read under the
// same lock so history updates never land on a newer round.
func (s *Session) Guess(letter string) (game.GuessResult, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.engine.Guess(letter)
	if err == nil {
		s.active = time.Now()
		if res.Finished {
			s.finished = s.active
		}
	}
	return res, s.round, err
}

// Snapshot returns the engine's current view.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// Elapsed is the time since the current round started.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.started)
}

// Expired reports whether the session may be dropped at now: its round
// finished more than finishedTTL ago, or nothing happened for idleTTL.
func (s *Session) Expired(now time.Time, idleTTL, finishedTTL time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finished.IsZero() && now.Sub(s.finished) >= finishedTTL {
		return true
	}
	return now.Sub(s.active) >= idleTTL
}

// Store defines the persistence interface for sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) []*Session
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memory) List(ctx context.Context) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
