package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"backoffice-backend/internal/domains/importacao/model"
	"backoffice-backend/pkg/cache"
)

const (
	sessionKeyPrefix = "import:session:"
	claimKeySuffix   = ":claim"
)

// cacheSessionStore keeps runs as JSON in the cache layer with a sliding TTL
type cacheSessionStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewSessionStore creates a SessionStore backed by cache.Cache (Redis in production)
func NewSessionStore(c cache.Cache, ttl time.Duration) SessionStore {
	return &cacheSessionStore{cache: c, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *cacheSessionStore) Save(ctx context.Context, run *model.ImportRun) error {
	if err := s.cache.Set(ctx, sessionKey(run.ID), run, s.ttl); err != nil {
		return model.NewSessionStoreError(fmt.Errorf("save session %s: %w", run.ID, err))
	}
	return nil
}

// Get returns ErrSessionNotFound when the run is unknown or expired
func (s *cacheSessionStore) Get(ctx context.Context, id string) (*model.ImportRun, error) {
	var run model.ImportRun
	found, err := s.cache.Get(ctx, sessionKey(id), &run)
	if err != nil {
		return nil, model.NewSessionStoreError(fmt.Errorf("get session %s: %w", id, err))
	}
	if !found {
		return nil, model.ErrSessionNotFound
	}
	return &run, nil
}

// Release drops the claim so a later confirmation of the same run can win again
func (s *cacheSessionStore) Release(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, sessionKey(id)+claimKeySuffix); err != nil {
		return model.NewSessionStoreError(fmt.Errorf("release session %s: %w", id, err))
	}
	return nil
}

// Claim uses an atomic counter so two concurrent confirmations cannot both win
func (s *cacheSessionStore) Claim(ctx context.Context, id string) (bool, error) {
	key := sessionKey(id) + claimKeySuffix

	n, err := s.cache.Increment(ctx, key)
	if err != nil {
		return false, model.NewSessionStoreError(fmt.Errorf("claim session %s: %w", id, err))
	}
	if n != 1 {
		return false, nil
	}

	if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("Failed to set claim expiry")
	}
	return true, nil
}
