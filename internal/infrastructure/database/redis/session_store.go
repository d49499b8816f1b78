package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionStore implements user.SessionStore. Each session is a JSON value
// under <prefix>session:<token> expiring with the session.
type SessionStore struct {
	client *Client
	now    func() time.Time
	logger logging.Logger
}

// NewSessionStore creates a SessionStore over client.
func NewSessionStore(client *Client, log logging.Logger) *SessionStore {
	return &SessionStore{client: client, now: time.Now, logger: log}
}

var _ user.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) key(token string) string {
	return s.client.Key(sessionKeyPrefix + token)
}

func (s *SessionStore) Create(ctx context.Context, sess *user.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.InvalidParam("session already expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode session")
	}
	if err := s.client.Set(ctx, s.key(sess.Token), data, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "store session")
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*user.Session, error) {
	if token == "" {
		return nil, errors.NotFound("session not found")
	}
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NotFound("session not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "load session")
	}
	var sess user.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn("dropping undecodable session", logging.Err(err))
		_ = s.client.Del(ctx, s.key(token)).Err()
		return nil, errors.NotFound("session not found")
	}
	if sess.Expired(s.now()) {
		return nil, errors.NotFound("session expired")
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "delete session")
	}
	return nil
}
