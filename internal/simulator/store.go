package simulator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/davidbz/pricelab/internal/decision"
	"github.com/davidbz/pricelab/internal/domain"
)

// DefaultSession is used when a request carries no session ID.
const DefaultSession = "default"

// ErrNoResult indicates a session with nothing stored yet.
var ErrNoResult = errors.New("no stored result for session")

// Snapshot is the last set of results one session produced. Later
// calculations read it to fill in omitted inputs.
type Snapshot struct {
	SessionID    string               `json:"session_id"`
	ModelKey     string               `json:"model_key,omitempty"`
	Usage        *domain.UsageProfile `json:"usage,omitempty"`
	UsageSource  string               `json:"usage_source,omitempty"`
	TasksPerUser int                  `json:"tasks_per_user,omitempty"`
	DAU          int                  `json:"dau,omitempty"`
	Plan         *domain.Plan         `json:"plan,omitempty"`
	Decision     *decision.Decision   `json:"decision,omitempty"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ResultStore keeps one snapshot per session.
type ResultStore interface {
	// Load returns ErrNoResult when the session has no snapshot.
	Load(ctx context.Context, sessionID string) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// MemoryStore is a process-local ResultStore.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:        sync.RWMutex{},
		snapshots: make(map[string]Snapshot),
	}
}

// Load returns the session snapshot.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[sessionID]
	if !ok {
		return Snapshot{}, ErrNoResult
	}
	return snapshot, nil
}

// Save replaces the session snapshot.
func (s *MemoryStore) Save(_ context.Context, snapshot Snapshot) error {
	if snapshot.SessionID == "" {
		return errors.New("session id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.SessionID] = snapshot
	return nil
}
