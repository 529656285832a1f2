// Package patterns learns and serves the two behavioral pattern shapes:
// daily labor expectations keyed by (restaurant, day-of-week) and timeslot
// fulfillment baselines keyed by (restaurant, day name, shift, window,
// category).
//
// Purpose:
//   Both managers apply exponential-moving-average updates and answer
//   reliability-gated queries. Stores are shared across a whole batch and
//   updated concurrently by orchestrator workers, so the in-memory
//   implementation shards its map with per-shard locks; bbolt and Redis
//   implementations persist patterns between batches.
//
// Dependencies:
//   - go.etcd.io/bbolt: embedded file-backed persistence
//   - github.com/redis/go-redis/v9: shared persistence across hosts
package patterns

import (
	"context"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// DailyStore persists daily labor patterns keyed by DailyPatternKey.
// Implementations must be safe for concurrent use; per-key read-modify-
// write cycles are serialized by the manager.
type DailyStore interface {
	GetDaily(ctx context.Context, key string) (domain.DailyLaborPattern, bool, error)
	PutDaily(ctx context.Context, p domain.DailyLaborPattern) error
	ListDaily(ctx context.Context) ([]domain.DailyLaborPattern, error)
}

// TimeslotStore persists timeslot patterns keyed by TimeslotPatternKey.
type TimeslotStore interface {
	GetTimeslot(ctx context.Context, key string) (domain.TimeslotPattern, bool, error)
	PutTimeslot(ctx context.Context, p domain.TimeslotPattern) error
	ListTimeslot(ctx context.Context) ([]domain.TimeslotPattern, error)
}

// Store bundles both pattern shapes behind one backend.
type Store interface {
	DailyStore
	TimeslotStore
}

// Statistics summarizes one manager's store for operators.
type Statistics struct {
	Total           int     `json:"total"`
	Reliable        int     `json:"reliable"`
	AvgConfidence   float64 `json:"avg_confidence"`
	AvgObservations float64 `json:"avg_observations"`
}
