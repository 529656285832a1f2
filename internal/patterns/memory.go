package patterns

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

const shardCount = 32

// shardedMap is a fixed 32-shard map with per-shard locks. Keys hash with
// FNV-1a; contention stays per-shard even when many workers upsert at
// once.
type shardedMap[V any] struct {
	shards [shardCount]struct {
		mu sync.RWMutex
		m  map[string]V
	}
}

func newShardedMap[V any]() *shardedMap[V] {
	s := &shardedMap[V]{}
	for i := range s.shards {
		s.shards[i].m = make(map[string]V)
	}
	return s
}

func shardFor(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}

func (s *shardedMap[V]) get(key string) (V, bool) {
	shard := &s.shards[shardFor(key)]
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	v, ok := shard.m[key]
	return v, ok
}

func (s *shardedMap[V]) put(key string, v V) {
	shard := &s.shards[shardFor(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	shard.m[key] = v
}

func (s *shardedMap[V]) list() []V {
	var out []V
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.RLock()
		for _, v := range shard.m {
			out = append(out, v)
		}
		shard.mu.RUnlock()
	}
	return out
}

// MemoryStore keeps both pattern shapes in sharded in-memory maps. It is
// the default backend for batches that do not persist patterns.
type MemoryStore struct {
	daily    *shardedMap[domain.DailyLaborPattern]
	timeslot *shardedMap[domain.TimeslotPattern]
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		daily:    newShardedMap[domain.DailyLaborPattern](),
		timeslot: newShardedMap[domain.TimeslotPattern](),
	}
}

// GetDaily implements DailyStore.
func (s *MemoryStore) GetDaily(_ context.Context, key string) (domain.DailyLaborPattern, bool, error) {
	p, ok := s.daily.get(key)
	return p, ok, nil
}

// PutDaily implements DailyStore.
func (s *MemoryStore) PutDaily(_ context.Context, p domain.DailyLaborPattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.daily.put(p.Key(), p)
	return nil
}

// ListDaily implements DailyStore.
func (s *MemoryStore) ListDaily(_ context.Context) ([]domain.DailyLaborPattern, error) {
	return s.daily.list(), nil
}

// GetTimeslot implements TimeslotStore.
func (s *MemoryStore) GetTimeslot(_ context.Context, key string) (domain.TimeslotPattern, bool, error) {
	p, ok := s.timeslot.get(key)
	return p, ok, nil
}

// PutTimeslot implements TimeslotStore.
func (s *MemoryStore) PutTimeslot(_ context.Context, p domain.TimeslotPattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.timeslot.put(p.Key(), p)
	return nil
}

// ListTimeslot implements TimeslotStore.
func (s *MemoryStore) ListTimeslot(_ context.Context) ([]domain.TimeslotPattern, error) {
	return s.timeslot.list(), nil
}
