package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/packbench/internal/model"
)

// archiveVersion is written into every record.
const archiveVersion = "1.0.0"

// RunRecord is an archived packing result.
type RunRecord struct {
	Version    string            `json:"version"`
	ID         string            `json:"id"`
	CreatedAt  string            `json:"created_at"`
	Algorithm  string            `json:"algorithm"`
	Instance   *model.Instance   `json:"instance"`
	Placements []model.Placement `json:"placements"`
	Objective  int               `json:"objective"`
	LowerBound int               `json:"lower_bound,omitempty"`
}

// NewRunRecord creates a record for out with a fresh id.
func NewRunRecord(algorithm string, out *model.Output, lowerBound int) RunRecord {
	return RunRecord{
		Version:    archiveVersion,
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Algorithm:  algorithm,
		Instance:   out.Instance,
		Placements: out.Placements,
		Objective:  out.Objective(),
		LowerBound: lowerBound,
	}
}

// Output rebuilds the packing held by the record.
func (r RunRecord) Output() *model.Output {
	return model.NewOutput(r.Instance, r.Placements)
}

// SaveRun writes r to <dir>/<id>.json and returns the path.
func SaveRun(dir string, r RunRecord) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run record: %w", err)
	}
	path := filepath.Join(dir, r.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run record: %w", err)
	}
	return path, nil
}

// LoadRun reads a record and checks that its placements still match the
// instance.
func LoadRun(path string) (RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to read run record: %w", err)
	}
	var r RunRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return RunRecord{}, fmt.Errorf("failed to parse run record: %w", err)
	}
	if r.Version == "" {
		return RunRecord{}, fmt.Errorf("invalid run record: missing version field")
	}
	if r.Instance == nil {
		return RunRecord{}, fmt.Errorf("invalid run record: missing instance")
	}
	if len(r.Placements) != len(r.Instance.Items) {
		return RunRecord{}, fmt.Errorf("invalid run record: %d placements for %d items",
			len(r.Placements), len(r.Instance.Items))
	}
	return r, nil
}

// ListRuns loads every record in dir, oldest first.
func ListRuns(dir string) ([]RunRecord, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	records := make([]RunRecord, 0, len(paths))
	for _, p := range paths {
		r, err := LoadRun(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		records = append(records, r)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt < records[j].CreatedAt
	})
	return records, nil
}
