package register

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps session drafts in process memory. It is the default
// backend for single-instance deployments and for tests.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	state     *SessionState
	expiresAt time.Time
}

// NewMemoryStore builds an in-memory store. A non-positive ttl disables
// expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.ttl > 0 && m.now().After(entry.expiresAt) {
		delete(m.entries, sessionID)
		return nil, ErrSessionNotFound
	}
	return cloneState(entry.state), nil
}

func (m *MemoryStore) Save(ctx context.Context, sessionID string, state *SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = memoryEntry{
		state:     cloneState(state),
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// cloneState defends the stored value against later in-place mutation by
// the caller, matching the isolation a serialized external store provides.
func cloneState(state *SessionState) *SessionState {
	if state == nil {
		return nil
	}
	out := &SessionState{Draft: state.Draft.Clone()}
	if state.Alerts != nil {
		out.Alerts = make([]Alert, len(state.Alerts))
		copy(out.Alerts, state.Alerts)
	}
	return out
}
