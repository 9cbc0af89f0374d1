package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaidee/backend/internal/model/chat"
)

// Redis key 前缀
const sessionKeyPrefix = "chat:session:"

// RedisStore keeps sessions in Redis so history survives restarts and is
// shared between replicas. Every write refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store on top of client. ttl <= 0 defaults to 24h.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *RedisStore) turnsKey(sessionID string) string {
	return fmt.Sprintf("%s%s:turns", sessionKeyPrefix, sessionID)
}

func (s *RedisStore) Create(ctx context.Context, session chat.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.sessionKey(session.ID), data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (chat.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return chat.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return chat.Session{}, fmt.Errorf("load session from redis: %w", err)
	}

	var session chat.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return chat.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	raw, err := s.client.LRange(ctx, s.turnsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load turns from redis: %w", err)
	}

	turns := make([]chat.Turn, 0, len(raw))
	for _, item := range raw {
		var turn chat.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, limit int, turns ...chat.Turn) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	session.UpdatedAt = time.Now().UTC()

	meta, err := json.Marshal(session)
	if err != nil {
		return err
	}

	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	key := s.turnsKey(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(values) > 0 {
			pipe.RPush(ctx, key, values...)
		}
		if limit > 0 {
			pipe.LTrim(ctx, key, int64(-limit), -1)
		}
		pipe.Expire(ctx, key, s.ttl)
		pipe.Set(ctx, s.sessionKey(sessionID), meta, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append turns to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	session.UpdatedAt = time.Now().UTC()

	meta, err := json.Marshal(session)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.turnsKey(sessionID))
		pipe.Set(ctx, s.sessionKey(sessionID), meta, s.ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	removed, err := s.client.Del(ctx, s.sessionKey(sessionID), s.turnsKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session from redis: %w", err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}
