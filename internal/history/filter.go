package history

import (
	"context"
	"strings"
	"time"
)

// Filter selects history records. Every predicate is independently
// optional; set predicates compose by logical AND, applied in order:
// date range, free text, accuracy range, has-wrong, question count.
type Filter struct {
	// From/To bound the record timestamp. Zero values are unbounded.
	From time.Time
	To   time.Time

	// Query matches as a substring of the display time or task id.
	Query string

	// MinCorrectRate/MaxCorrectRate bound the accuracy on a 0-100
	// scale. Nil means unbounded.
	MinCorrectRate *float64
	MaxCorrectRate *float64

	// HasWrong keeps only records with at least one wrong answer.
	HasWrong bool

	// MinQuestions/MaxQuestions bound the question count.
	// Zero means unbounded.
	MinQuestions int
	MaxQuestions int
}

// Matches reports whether the record passes every set predicate.
func (f Filter) Matches(r Record) bool {
	if !f.From.IsZero() && r.Timestamp < f.From.UnixMilli() {
		return false
	}
	if !f.To.IsZero() && r.Timestamp > f.To.UnixMilli() {
		return false
	}

	if f.Query != "" {
		if !strings.Contains(r.DisplayTime, f.Query) && !strings.Contains(r.TaskID, f.Query) {
			return false
		}
	}

	if f.MinCorrectRate != nil && r.CorrectRate() < *f.MinCorrectRate {
		return false
	}
	if f.MaxCorrectRate != nil && r.CorrectRate() > *f.MaxCorrectRate {
		return false
	}
	// A rate bound is meaningless on an empty record; exclude it so
	// "100% correct" never matches a record with no questions.
	if (f.MinCorrectRate != nil || f.MaxCorrectRate != nil) && r.Result.Summary.TotalQuestions == 0 {
		return false
	}

	if f.HasWrong && r.Result.Summary.WrongCount == 0 {
		return false
	}

	if f.MinQuestions > 0 && r.Result.Summary.TotalQuestions < f.MinQuestions {
		return false
	}
	if f.MaxQuestions > 0 && r.Result.Summary.TotalQuestions > f.MaxQuestions {
		return false
	}

	return true
}

// GetFilteredHistory returns the records passing the filter, newest
// first.
func (s *Store) GetFilteredHistory(ctx context.Context, f Filter) ([]Record, error) {
	records, err := s.GetHistory(ctx)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
