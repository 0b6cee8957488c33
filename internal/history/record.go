// Package history persists canonical grading results and serves them
// back through a short-lived read cache, with filtered queries,
// aggregate statistics, a repair pass, and merge-based import/export.
package history

import (
	"time"

	"github.com/csh0601/snapgrade/internal/grading"
)

// displayTimeLayout formats a record's timestamp for presentation.
const displayTimeLayout = "2006-01-02 15:04"

// WrongPoint names a knowledge point the student got wrong, with the
// grader's explanation.
type WrongPoint struct {
	Point       string `json:"point"`
	Description string `json:"description"`
}

// Record is one persisted grading outcome. Created exactly once by
// SaveHistory and never mutated afterwards, except by the explicit
// repair pass that recomputes the summary from the underlying result.
type Record struct {
	// ID is unique, generated at save time.
	ID string `json:"id"`

	TaskID string `json:"task_id"`

	// Timestamp is the save time in epoch milliseconds. Eviction
	// order and the default sort both key off it.
	Timestamp int64 `json:"timestamp"`

	// DisplayTime is Timestamp formatted for presentation.
	DisplayTime string `json:"display_time"`

	// ImageRef is the opaque URI of the submitted photo.
	ImageRef string `json:"image_ref"`

	Result grading.Result `json:"grading_result"`

	WrongPoints []WrongPoint `json:"wrong_knowledge_points"`
}

// CorrectRate returns the record's accuracy on a 0-100 scale.
func (r Record) CorrectRate() float64 {
	return r.Result.Summary.AccuracyRate * 100
}

func formatDisplayTime(ms int64) string {
	return time.UnixMilli(ms).Format(displayTimeLayout)
}

// wrongPointsOf collects the knowledge points of incorrect outcomes.
func wrongPointsOf(res grading.Result) []WrongPoint {
	points := []WrongPoint{}
	seen := map[string]bool{}
	for _, o := range res.Outcomes {
		if o.Correct {
			continue
		}
		for _, kp := range o.KnowledgePoints {
			if kp == "" || seen[kp] {
				continue
			}
			seen[kp] = true
			points = append(points, WrongPoint{Point: kp, Description: o.Explanation})
		}
	}
	return points
}
