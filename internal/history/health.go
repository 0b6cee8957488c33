package history

import (
	"context"
	"fmt"
)

// HealthIssue flags one inconsistency in a stored record.
type HealthIssue struct {
	RecordID string `json:"record_id"`
	Problem  string `json:"problem"`
}

// HealthReport is the result of a read-only diagnostic pass.
type HealthReport struct {
	Total  int           `json:"total"`
	Issues []HealthIssue `json:"issues"`
}

// Healthy reports whether no issues were found.
func (r HealthReport) Healthy() bool { return len(r.Issues) == 0 }

// CheckDataHealth scans every record for summary inconsistencies.
// Read-only: nothing is rewritten; use FixExistingRecords for that.
func (s *Store) CheckDataHealth(ctx context.Context) (HealthReport, error) {
	records, err := s.loadAll(ctx)
	if err != nil {
		return HealthReport{}, err
	}

	report := HealthReport{Total: len(records), Issues: []HealthIssue{}}
	flag := func(id, format string, args ...any) {
		report.Issues = append(report.Issues, HealthIssue{
			RecordID: id,
			Problem:  fmt.Sprintf(format, args...),
		})
	}

	for _, rec := range records {
		sum := rec.Result.Summary

		if sum.TotalQuestions == 0 && sum.CorrectCount == 0 && sum.WrongCount == 0 && len(rec.Result.Outcomes) > 0 {
			flag(rec.ID, "summary missing despite %d grading outcomes", len(rec.Result.Outcomes))
			continue
		}
		if sum.TotalQuestions != sum.CorrectCount+sum.WrongCount {
			flag(rec.ID, "total questions %d != correct %d + wrong %d",
				sum.TotalQuestions, sum.CorrectCount, sum.WrongCount)
		}
		if sum.TotalQuestions == 0 && len(rec.Result.Outcomes) > 0 {
			flag(rec.ID, "zero total questions despite %d grading outcomes", len(rec.Result.Outcomes))
		}
		if sum.AccuracyRate < 0 || sum.AccuracyRate > 1 {
			flag(rec.ID, "accuracy rate %v outside [0,1]", sum.AccuracyRate)
		}
	}
	return report, nil
}
