package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Checkpoint is the serializable snapshot of a run's progress: completion
// flags, durations, and metadata only. Raw tables and produced values are
// deliberately excluded, so a partial checkpoint supports skip-or-restart
// decisions between stages, never mid-stage resume.
type Checkpoint struct {
	Restaurant       string            `json:"restaurant"`
	Date             string            `json:"date"`
	CompletedStages  []string          `json:"completed_stages"`
	StageDurationsMS map[string]int64  `json:"stage_durations_ms"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Warnings         []string          `json:"warnings,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Snapshot captures the context's progress as a checkpoint.
func (c *Context) Snapshot(stageOrder []string) Checkpoint {
	cp := Checkpoint{
		Restaurant:       c.Restaurant,
		Date:             c.Date,
		StageDurationsMS: make(map[string]int64, len(c.durations)),
		CreatedAt:        time.Now(),
	}
	for _, stage := range stageOrder {
		if c.completed[stage] {
			cp.CompletedStages = append(cp.CompletedStages, stage)
		}
	}
	for stage, d := range c.durations {
		cp.StageDurationsMS[stage] = d.Milliseconds()
	}
	if len(c.metadata) > 0 {
		cp.Metadata = make(map[string]string, len(c.metadata))
		for k, v := range c.metadata {
			cp.Metadata[k] = v
		}
	}
	cp.Warnings = append(cp.Warnings, c.warnings...)
	return cp
}

// Restore rehydrates progress flags and metadata from a checkpoint.
func (c *Context) Restore(cp Checkpoint) {
	for _, stage := range cp.CompletedStages {
		c.completed[stage] = true
	}
	for stage, ms := range cp.StageDurationsMS {
		c.durations[stage] = time.Duration(ms) * time.Millisecond
	}
	for k, v := range cp.Metadata {
		c.metadata[k] = v
	}
	c.warnings = append(c.warnings, cp.Warnings...)
}

// HasStage reports whether the checkpoint marks a stage complete.
func (cp Checkpoint) HasStage(stage string) bool {
	for _, s := range cp.CompletedStages {
		if s == stage {
			return true
		}
	}
	return false
}

// CheckpointStore persists checkpoints as one JSON file per run.
type CheckpointStore struct {
	dir    string
	logger *zap.Logger
	mu     sync.RWMutex
}

// CheckpointStoreConfig configures the checkpoint store.
type CheckpointStoreConfig struct {
	Dir    string
	Logger *zap.Logger
}

// NewCheckpointStore creates the store, making its directory if needed.
func NewCheckpointStore(cfg CheckpointStoreConfig) (*CheckpointStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &CheckpointStore{
		dir:    cfg.Dir,
		logger: cfg.Logger.With(zap.String("component", "checkpoint-store")),
	}, nil
}

// Save writes a run's checkpoint, replacing any previous snapshot.
func (s *CheckpointStore) Save(cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	path := s.path(cp.Restaurant, cp.Date)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint file: %w", err)
	}

	s.logger.Debug("checkpoint saved",
		zap.String("restaurant", cp.Restaurant),
		zap.String("business_date", cp.Date),
		zap.Int("completed_stages", len(cp.CompletedStages)),
	)
	return nil
}

// Load reads a run's checkpoint. The second return is false when no
// snapshot exists.
func (s *CheckpointStore) Load(restaurant, date string) (Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(restaurant, date))
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("read checkpoint file: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return cp, true, nil
}

// Delete removes a run's checkpoint.
func (s *CheckpointStore) Delete(restaurant, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(restaurant, date)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete checkpoint file: %w", err)
	}
	return nil
}

func (s *CheckpointStore) path(restaurant, date string) string {
	name := strings.ReplaceAll(restaurant, string(os.PathSeparator), "_") + "_" + date + ".json"
	return filepath.Join(s.dir, name)
}
