package workspace

import (
	"github.com/google/uuid"
)

// ReviewBranchName returns prefix followed by the first 8 characters of runID, so that a run never reuses a branch left
// behind by an earlier one. An empty runID gets a fresh UUID
func ReviewBranchName(prefix string, runID string) string {
	if len(runID) < 8 {
		runID = uuid.New().String()
	}
	return prefix + runID[:8]
}
