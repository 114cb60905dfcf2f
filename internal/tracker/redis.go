package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "locator:viewer:"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
	fieldPosition  = "position"
	fieldHeading   = "heading"

	maxUpdateRetries = 20
)

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each session in a redis hash that expires after the TTL
// of inactivity. It lets several server replicas share viewer sessions.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStore{client: rdb, ttl: ttl}, nil
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

// Create starts a new session
func (r *RedisStore) Create(ctx context.Context) (*models.ViewerSession, error) {
	now := time.Now()
	s := &models.ViewerSession{
		ID:        newSessionID(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	key := redisKey(s.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldCreatedAt, now.UnixMilli(),
			fieldUpdatedAt, now.UnixMilli(),
		)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// Get returns a session
func (r *RedisStore) Get(ctx context.Context, id string) (*models.ViewerSession, error) {
	if !ValidSessionID(id) {
		return nil, ErrSessionNotFound
	}
	fields, err := r.client.HGetAll(ctx, redisKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decodeSession(id, fields)
}

// SetPosition records a position sample
func (r *RedisStore) SetPosition(ctx context.Context, id string, sample models.PositionSample) (*models.ViewerSession, error) {
	return r.update(ctx, id, fieldPosition, func(s *models.ViewerSession) (any, bool) {
		if !applyPosition(s, sample) {
			return nil, false
		}
		return s.Position, true
	})
}

// SetHeading records a heading sample
func (r *RedisStore) SetHeading(ctx context.Context, id string, sample models.HeadingSample) (*models.ViewerSession, error) {
	return r.update(ctx, id, fieldHeading, func(s *models.ViewerSession) (any, bool) {
		if !applyHeading(s, sample) {
			return nil, false
		}
		return s.Heading, true
	})
}

// update applies a change to a session under WATCH so concurrent writers
// never overwrite a newer sample, and a session that expires mid-update is
// reported as not found instead of being recreated without its metadata.
func (r *RedisStore) update(ctx context.Context, id, field string, apply func(*models.ViewerSession) (any, bool)) (*models.ViewerSession, error) {
	if !ValidSessionID(id) {
		return nil, ErrSessionNotFound
	}

	key := redisKey(id)
	var result *models.ViewerSession
	txf := func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		s, err := decodeSession(id, fields)
		if err != nil {
			return err
		}

		value, changed := apply(s)
		if !changed {
			result = s
			return nil
		}

		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", field, err)
		}

		s.UpdatedAt = time.Now()
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, data, fieldUpdatedAt, s.UpdatedAt.UnixMilli())
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = s
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Another writer touched the session, or it expired; read it again
			continue
		}
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to store %s: %w", field, err)
	}
	return nil, fmt.Errorf("failed to store %s: too many concurrent updates", field)
}

// Delete removes a session
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if !ValidSessionID(id) {
		return ErrSessionNotFound
	}
	n, err := r.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Close closes the redis client
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// decodeSession rebuilds a session from its hash fields
func decodeSession(id string, fields map[string]string) (*models.ViewerSession, error) {
	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}

	s := &models.ViewerSession{ID: id}
	var err error
	if s.CreatedAt, err = parseMillis(fields[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	if s.UpdatedAt, err = parseMillis(fields[fieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}

	if raw, ok := fields[fieldPosition]; ok && raw != "null" {
		var p models.PositionSample
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("corrupt position in session %s: %w", id, err)
		}
		s.Position = &p
	}
	if raw, ok := fields[fieldHeading]; ok && raw != "null" {
		var h models.HeadingSample
		if err := json.Unmarshal([]byte(raw), &h); err != nil {
			return nil, fmt.Errorf("corrupt heading in session %s: %w", id, err)
		}
		s.Heading = &h
	}
	return s, nil
}

func parseMillis(v string) (time.Time, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", v)
	}
	return time.UnixMilli(ms), nil
}
