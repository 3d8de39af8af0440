package register

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned by stores when no draft exists for the
// session. The engine treats a missing session as a fresh page load and
// initializes an empty draft.
var ErrSessionNotFound = errors.New("register session not found")

// SessionState is everything persisted per register session: the current
// draft plus the alerts accumulated for the panel.
type SessionState struct {
	Draft  *Draft  `json:"draft"`
	Alerts []Alert `json:"alerts"`
}

// DraftStore persists per-session register state.
type DraftStore interface {
	Load(ctx context.Context, sessionID string) (*SessionState, error)
	Save(ctx context.Context, sessionID string, state *SessionState) error
	Delete(ctx context.Context, sessionID string) error
}
