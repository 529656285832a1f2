// Package artifact writes the batch outputs: the pipeline runs document
// and its optional delivery to S3-compatible object storage.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// Output filenames inside the output directory. The dashboard server and
// transformer address both by these fixed names.
const (
	RunsFile      = "pipeline_runs.json"
	DashboardFile = "v4-data.js"
)

// Document is the batch artifact: one entry per attempted run plus the
// batch summary.
type Document struct {
	BatchID      string              `json:"batch_id"`
	GeneratedAt  time.Time           `json:"generated_at"`
	PipelineRuns []domain.RunResult  `json:"pipeline_runs"`
	Summary      domain.BatchSummary `json:"summary"`
}

// NewDocument assembles the artifact for one finished batch.
func NewDocument(runs []domain.RunResult, summary domain.BatchSummary) Document {
	return Document{
		BatchID:      uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		PipelineRuns: runs,
		Summary:      summary,
	}
}

// Marshal renders the document as indented JSON.
func (d Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal batch artifact: %w", err)
	}
	return data, nil
}

// Load reads a previously written artifact back, for the dashboard
// transformer and for resumed inspection.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read batch artifact: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("unmarshal batch artifact %s: %w", path, err)
	}
	return doc, nil
}

// Writer persists batch outputs under one output directory.
type Writer struct {
	dir    string
	logger *zap.Logger
}

// NewWriter creates a writer, making the output directory if needed.
func NewWriter(dir string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteFile writes one named output file and returns its full path.
func (w *Writer) WriteFile(name string, data []byte) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	w.logger.Debug("output file written",
		zap.String("path", path),
		zap.Int("size_bytes", len(data)),
	)
	return path, nil
}

// WriteDocument writes the runs document and returns its full path.
func (w *Writer) WriteDocument(doc Document) (string, error) {
	data, err := doc.Marshal()
	if err != nil {
		return "", err
	}
	return w.WriteFile(RunsFile, data)
}

// ObjectKey builds the object storage key for one output file of a batch.
func ObjectKey(summary domain.BatchSummary, name string) string {
	return fmt.Sprintf("omnipos/%s_%s/%s", summary.DateFrom, summary.DateTo, name)
}
