package patterns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// Redis hash keys. Each kind lives in one hash with the pattern key as the
// field, so a full load is a single HGETALL.
const (
	dailyHashKey    = "omnipos:patterns:daily"
	timeslotHashKey = "omnipos:patterns:timeslot"
)

// RedisStore persists patterns in Redis. Use it when several pipeline hosts
// must share one learned state; for single-host deployments BoltStore
// avoids the extra service.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client. The caller owns the client
// lifecycle.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetDaily retrieves one daily pattern by key.
func (s *RedisStore) GetDaily(ctx context.Context, key string) (domain.DailyLaborPattern, bool, error) {
	var p domain.DailyLaborPattern
	data, err := s.client.HGet(ctx, dailyHashKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return p, false, nil
	}
	if err != nil {
		return p, false, fmt.Errorf("redis get daily pattern %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return p, false, fmt.Errorf("unmarshal daily pattern %s: %w", key, err)
	}
	return p, true, nil
}

// PutDaily stores one daily pattern under its key.
func (s *RedisStore) PutDaily(ctx context.Context, p domain.DailyLaborPattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal daily pattern: %w", err)
	}
	if err := s.client.HSet(ctx, dailyHashKey, p.Key(), data).Err(); err != nil {
		return fmt.Errorf("redis put daily pattern %s: %w", p.Key(), err)
	}
	return nil
}

// ListDaily returns every stored daily pattern.
func (s *RedisStore) ListDaily(ctx context.Context) ([]domain.DailyLaborPattern, error) {
	fields, err := s.client.HGetAll(ctx, dailyHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list daily patterns: %w", err)
	}
	out := make([]domain.DailyLaborPattern, 0, len(fields))
	for key, data := range fields {
		var p domain.DailyLaborPattern
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("unmarshal daily pattern %s: %w", key, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// GetTimeslot retrieves one timeslot pattern by key.
func (s *RedisStore) GetTimeslot(ctx context.Context, key string) (domain.TimeslotPattern, bool, error) {
	var p domain.TimeslotPattern
	data, err := s.client.HGet(ctx, timeslotHashKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return p, false, nil
	}
	if err != nil {
		return p, false, fmt.Errorf("redis get timeslot pattern %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return p, false, fmt.Errorf("unmarshal timeslot pattern %s: %w", key, err)
	}
	return p, true, nil
}

// PutTimeslot stores one timeslot pattern under its key.
func (s *RedisStore) PutTimeslot(ctx context.Context, p domain.TimeslotPattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal timeslot pattern: %w", err)
	}
	if err := s.client.HSet(ctx, timeslotHashKey, p.Key(), data).Err(); err != nil {
		return fmt.Errorf("redis put timeslot pattern %s: %w", p.Key(), err)
	}
	return nil
}

// ListTimeslot returns every stored timeslot pattern.
func (s *RedisStore) ListTimeslot(ctx context.Context) ([]domain.TimeslotPattern, error) {
	fields, err := s.client.HGetAll(ctx, timeslotHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list timeslot patterns: %w", err)
	}
	out := make([]domain.TimeslotPattern, 0, len(fields))
	for key, data := range fields {
		var p domain.TimeslotPattern
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("unmarshal timeslot pattern %s: %w", key, err)
		}
		out = append(out, p)
	}
	return out, nil
}
