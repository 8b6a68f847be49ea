package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/core/port"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
)

const defaultWebSessionPrefix = "nenemia:session"

// WebSessionStore keeps web sessions as JSON documents with a sliding TTL.
type WebSessionStore struct {
	client *red.Client
	prefix string
}

// NewWebSessionStore constructs a Redis-backed session store.
func NewWebSessionStore(client *red.Client, keyPrefix string) *WebSessionStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultWebSessionPrefix
	}
	return &WebSessionStore{client: client, prefix: prefix}
}

// Load fetches the session stored under id.
func (s *WebSessionStore) Load(ctx context.Context, id string) (*domain.WebSession, error) {
	key := s.key(id)
	if key == "" {
		return nil, repository.ErrNotFound
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.WebSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	session.ID = strings.TrimSpace(id)

	return &session, nil
}

// Save writes the session and refreshes its TTL.
func (s *WebSessionStore) Save(ctx context.Context, session *domain.WebSession, ttl time.Duration) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	key := s.key(session.ID)
	if key == "" {
		return fmt.Errorf("session id is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Delete removes the session. Deleting an unknown id is not an error.
func (s *WebSessionStore) Delete(ctx context.Context, id string) error {
	key := s.key(id)
	if key == "" {
		return nil
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func (s *WebSessionStore) key(id string) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", s.prefix, trimmed)
}

var _ port.WebSessionStore = (*WebSessionStore)(nil)
