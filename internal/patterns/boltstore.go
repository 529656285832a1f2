package patterns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

var (
	dailyBucket    = []byte("daily_patterns")
	timeslotBucket = []byte("timeslot_patterns")
)

// BoltStore persists patterns in an embedded BoltDB file. It is the
// default store for single-host deployments where learned state must
// survive restarts without an external service.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the pattern database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open pattern db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(dailyBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(timeslotBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create pattern buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetDaily retrieves one daily pattern by key.
func (s *BoltStore) GetDaily(ctx context.Context, key string) (domain.DailyLaborPattern, bool, error) {
	var p domain.DailyLaborPattern
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(dailyBucket)
		if bucket == nil {
			return fmt.Errorf("daily pattern bucket not found")
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("unmarshal daily pattern %s: %w", key, err)
		}
		found = true
		return nil
	})
	return p, found, err
}

// PutDaily stores one daily pattern under its key.
func (s *BoltStore) PutDaily(ctx context.Context, p domain.DailyLaborPattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(dailyBucket)
		if bucket == nil {
			return fmt.Errorf("daily pattern bucket not found")
		}
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal daily pattern: %w", err)
		}
		return bucket.Put([]byte(p.Key()), data)
	})
}

// ListDaily returns every stored daily pattern.
func (s *BoltStore) ListDaily(ctx context.Context) ([]domain.DailyLaborPattern, error) {
	var out []domain.DailyLaborPattern
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(dailyBucket)
		if bucket == nil {
			return fmt.Errorf("daily pattern bucket not found")
		}
		return bucket.ForEach(func(k, v []byte) error {
			var p domain.DailyLaborPattern
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshal daily pattern %s: %w", k, err)
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}

// GetTimeslot retrieves one timeslot pattern by key.
func (s *BoltStore) GetTimeslot(ctx context.Context, key string) (domain.TimeslotPattern, bool, error) {
	var p domain.TimeslotPattern
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(timeslotBucket)
		if bucket == nil {
			return fmt.Errorf("timeslot pattern bucket not found")
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("unmarshal timeslot pattern %s: %w", key, err)
		}
		found = true
		return nil
	})
	return p, found, err
}

// PutTimeslot stores one timeslot pattern under its key.
func (s *BoltStore) PutTimeslot(ctx context.Context, p domain.TimeslotPattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(timeslotBucket)
		if bucket == nil {
			return fmt.Errorf("timeslot pattern bucket not found")
		}
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal timeslot pattern: %w", err)
		}
		return bucket.Put([]byte(p.Key()), data)
	})
}

// ListTimeslot returns every stored timeslot pattern.
func (s *BoltStore) ListTimeslot(ctx context.Context) ([]domain.TimeslotPattern, error) {
	var out []domain.TimeslotPattern
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(timeslotBucket)
		if bucket == nil {
			return fmt.Errorf("timeslot pattern bucket not found")
		}
		return bucket.ForEach(func(k, v []byte) error {
			var p domain.TimeslotPattern
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshal timeslot pattern %s: %w", k, err)
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}
