package register

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/openstudio/register-gateway/pkg/redis"
)

// RedisStore persists session drafts as JSON values with a TTL, so a
// register terminal can survive a gateway restart mid-transaction.
type RedisStore struct {
	client *pkgredis.Client
	ttl    time.Duration
}

func NewRedisStore(client *pkgredis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	raw, err := r.client.Get(ctx, r.client.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	var state SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	if state.Draft != nil {
		state.Draft.Backfill()
	}
	return &state, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, state *SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sessionID, err)
	}
	if err := r.client.Set(ctx, r.client.SessionKey(sessionID), string(raw), r.ttl); err != nil {
		return fmt.Errorf("saving session %s: %w", sessionID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.client.SessionKey(sessionID)); err != nil {
		return fmt.Errorf("deleting session %s: %w", sessionID, err)
	}
	return nil
}
