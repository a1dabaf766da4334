package cache

import (
	"context"
	"time"
)

const revokedSessionPrefix = "session:revoked:"

// SessionStore remembers logged-out session token ids until they expire.
type SessionStore struct {
	cache *Client
}

func NewSessionStore(c *Client) *SessionStore {
	return &SessionStore{cache: c}
}

// Revoke blacklists tokenID for ttl. Non-positive ttls are a no-op.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedSessionPrefix+tokenID, []byte("1"), ttl)
}

// IsRevoked reports whether tokenID was logged out. Without Redis nothing is revoked.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, revokedSessionPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
