package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/identity/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// RedisStore keeps each session as a JSON value that expires with the
// session, plus a per-user set of session IDs.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func sessionKey(sessionID id.SessionID) string { return sessionKeyPrefix + sessionID.String() }
func userKey(userID id.UserID) string          { return userSessionKeyPrefix + userID.String() }

func (s *RedisStore) ttl(sess *models.Session) time.Duration {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := s.ttl(sess)
	ok, err := s.client.SetNX(ctx, sessionKey(sess.ID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, userKey(sess.UserID), sess.ID.String())
	pipe.Expire(ctx, userKey(sess.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index session: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	return s.read(ctx, s.client, sessionID)
}

func (s *RedisStore) read(ctx context.Context, c redis.Cmdable, sessionID id.SessionID) (*models.Session, error) {
	raw, err := c.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Execute applies mutate under WATCH on the session key. A concurrent write
// aborts the transaction with redis.TxFailedErr. The key's TTL is kept.
func (s *RedisStore) Execute(ctx context.Context, sessionID id.SessionID, validate func(*models.Session) error, mutate func(*models.Session)) (*models.Session, error) {
	var out *models.Session
	key := sessionKey(sessionID)
	err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
		sess, err := s.read(ctx, rtx, sessionID)
		if err != nil {
			return err
		}
		if err := validate(sess); err != nil {
			return err
		}
		mutate(sess)
		payload, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		out = sess
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) ListByUser(ctx context.Context, userID id.UserID) ([]models.Session, error) {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]models.Session, 0, len(ids))
	for _, raw := range ids {
		sid, err := id.ParseSessionID(raw)
		if err != nil {
			continue
		}
		sess, err := s.read(ctx, s.client, sid)
		if errors.Is(err, sentinel.ErrNotFound) {
			// expired; the index entry is stale
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	return out, nil
}

func (s *RedisStore) DeleteByUser(ctx context.Context, userID id.UserID) error {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		return sentinel.ErrNotFound
	}
	keys := make([]string, 0, len(ids)+1)
	for _, raw := range ids {
		keys = append(keys, sessionKeyPrefix+raw)
	}
	keys = append(keys, userKey(userID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}
