package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/csh0601/snapgrade/internal/grading"
)

// FixReport is the outcome of a repair pass.
type FixReport struct {
	// Fixed counts records whose summary was rewritten.
	Fixed int `json:"fixed"`

	// Errors collects per-record failures. A bad record never aborts
	// processing of the rest.
	Errors []string `json:"errors"`
}

// FixExistingRecords recomputes every record's summary from its
// underlying grading result and rewrites only the records whose
// recomputed counts differ from the stored ones. Best effort: a
// record that cannot be decoded is collected into the error list and
// kept in place verbatim. Records leave the store only through
// explicit delete or capacity eviction, never through a failed repair.
func (s *Store) FixExistingRecords(ctx context.Context) (FixReport, error) {
	report := FixReport{Errors: []string{}}

	raw, err := s.kv.Get(ctx, recordsKey)
	if err != nil {
		return report, fmt.Errorf("load history: %w", err)
	}
	if raw == nil {
		return report, nil
	}

	// Decode element-wise so one corrupt record doesn't take the
	// whole pass down with it. Repaired records are re-marshaled in
	// place; everything else keeps its original bytes.
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return report, fmt.Errorf("decode history: %w", err)
	}

	for i, el := range elements {
		var rec Record
		if err := json.Unmarshal(el, &rec); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("record %d: %v", i, err))
			continue
		}

		recomputed := grading.Summarize(rec.Result.Outcomes)
		if rec.Result.Summary.ConsistentWith(recomputed) {
			continue
		}
		rec.Result.Summary = recomputed
		rec.WrongPoints = wrongPointsOf(rec.Result)

		fixed, err := json.Marshal(rec)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		elements[i] = fixed
		report.Fixed++
	}

	if report.Fixed == 0 {
		return report, nil
	}

	out, err := json.Marshal(elements)
	if err != nil {
		return report, fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Put(ctx, recordsKey, out); err != nil {
		return report, fmt.Errorf("write history: %w", err)
	}
	s.invalidate()
	slog.Info("history repair pass complete", "fixed", report.Fixed, "errors", len(report.Errors))
	return report, nil
}
