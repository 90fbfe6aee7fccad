package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
)

// Nomes das entradas do cache local, um conjunto por navegador.
const (
	keyUser      = "supabase_user"
	keyProfile   = "user_profile"
	keyLastCheck = "last_auth_check"
	keyToken     = "auth_token"
)

func redisKey(sid, name string) string {
	return "presenca:" + sid + ":" + name
}

// RedisCache persiste a CacheEntry em três chaves com TTL.
type RedisCache struct {
	client *redis.Client
	sid    string
	ttl    time.Duration
}

// NewRedisCache cria o cache do navegador sid.
func NewRedisCache(client *redis.Client, sid string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, sid: sid, ttl: ttl}
}

func (c *RedisCache) Load(ctx context.Context) (*CacheEntry, error) {
	values, err := c.client.MGet(ctx,
		redisKey(c.sid, keyUser),
		redisKey(c.sid, keyProfile),
		redisKey(c.sid, keyLastCheck),
	).Result()
	if err != nil {
		return nil, err
	}
	if values[0] == nil {
		return nil, nil
	}

	entry := &CacheEntry{}
	if raw, ok := values[0].(string); ok {
		var user remote.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, err
		}
		entry.Identity = &user
	}
	if raw, ok := values[1].(string); ok {
		var profile repo.Profile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			return nil, err
		}
		entry.Profile = &profile
	}
	if raw, ok := values[2].(string); ok {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		entry.LastCheckedAt = time.UnixMilli(millis)
	}
	return entry, nil
}

// Save grava as três chaves; entradas nil são removidas.
func (c *RedisCache) Save(ctx context.Context, entry CacheEntry) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := setJSON(ctx, pipe, redisKey(c.sid, keyUser), entry.Identity, c.ttl); err != nil {
			return err
		}
		if err := setJSON(ctx, pipe, redisKey(c.sid, keyProfile), entry.Profile, c.ttl); err != nil {
			return err
		}
		if entry.LastCheckedAt.IsZero() {
			pipe.Del(ctx, redisKey(c.sid, keyLastCheck))
		} else {
			pipe.Set(ctx, redisKey(c.sid, keyLastCheck), strconv.FormatInt(entry.LastCheckedAt.UnixMilli(), 10), c.ttl)
		}
		return nil
	})
	return err
}

func (c *RedisCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx,
		redisKey(c.sid, keyUser),
		redisKey(c.sid, keyProfile),
		redisKey(c.sid, keyLastCheck),
	).Err()
}

func setJSON[T any](ctx context.Context, pipe redis.Pipeliner, key string, value *T, ttl time.Duration) error {
	if value == nil {
		pipe.Del(ctx, key)
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	pipe.Set(ctx, key, payload, ttl)
	return nil
}

// RedisSessionStore guarda os tokens do navegador no Redis.
type RedisSessionStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ remote.SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore cria o store do navegador sid.
func NewRedisSessionStore(client *redis.Client, sid string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, key: redisKey(sid, keyToken), ttl: ttl}
}

func (s *RedisSessionStore) LoadSession(ctx context.Context) (*remote.Session, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var session remote.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) SaveSession(ctx context.Context, session *remote.Session) error {
	if session == nil {
		return s.DeleteSession(ctx)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, payload, s.ttl).Err()
}

func (s *RedisSessionStore) DeleteSession(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
