package handoff

import (
	"strings"
)

// Well-known value names.
const (
	RawDataset     = "animelist_df"
	CleanedRecords = "cleaned_animelist_df"
)

// Key identifies one value of one run.
type Key struct {
	RunID string
	Name  string
}

// String generates the storage key.
// Format: animelist:<run id>:<name>
//
// Example:
//
//	animelist:5f0c...:animelist_df
func (k Key) String() string {
	parts := []string{"animelist"}
	if runID := strings.TrimSpace(k.RunID); runID != "" {
		parts = append(parts, runID)
	}
	parts = append(parts, k.Name)
	return strings.Join(parts, ":")
}
