package history

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/csh0601/snapgrade/internal/grading"
)

// corruptSummary writes a record sequence where the stored summary
// disagrees with the underlying outcomes, bypassing the save path.
func corruptSummary(t *testing.T, s *Store) Record {
	t.Helper()
	ctx := context.Background()

	rec, err := s.SaveHistory(ctx, "img", resultWith(1, 1), "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	records, err := s.loadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := range records {
		if records[i].ID == rec.ID {
			records[i].Result.Summary = grading.Summary{TotalQuestions: 9, CorrectCount: 3, WrongCount: 1}
		}
	}
	if err := s.writeAll(ctx, records); err != nil {
		t.Fatalf("write: %v", err)
	}
	return *rec
}

// spliceRawElement appends a raw JSON element to the stored sequence,
// bypassing the record codec.
func spliceRawElement(t *testing.T, s *Store, element string) {
	t.Helper()
	ctx := context.Background()

	raw, err := s.kv.Get(ctx, recordsKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var elements []json.RawMessage
	if raw != nil {
		if err := json.Unmarshal(raw, &elements); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	elements = append(elements, json.RawMessage(element))
	spliced, err := json.Marshal(elements)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := s.kv.Put(ctx, recordsKey, spliced); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.invalidate()
}

// rawElements reads the stored sequence element-wise, without
// requiring every element to decode as a Record.
func rawElements(t *testing.T, s *Store) []json.RawMessage {
	t.Helper()

	raw, err := s.kv.Get(context.Background(), recordsKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return elements
}

func TestFixExistingRecords(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	// One consistent record, one corrupted.
	if _, err := s.SaveHistory(ctx, "ok", resultWith(2, 0), ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	corrupted := corruptSummary(t, s)

	report, err := s.FixExistingRecords(ctx)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if report.Fixed != 1 {
		t.Fatalf("expected 1 fixed record, got %d", report.Fixed)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}

	got, err := s.GetRecordByID(ctx, corrupted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	sum := got.Result.Summary
	if sum.TotalQuestions != 2 || sum.CorrectCount != 1 || sum.WrongCount != 1 {
		t.Fatalf("summary not recomputed: %+v", sum)
	}
}

func TestFixExistingRecords_KeepsUnreadableRecords(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	if _, err := s.SaveHistory(ctx, "ok", resultWith(1, 0), ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	corrupted := corruptSummary(t, s)

	// An element the record codec cannot read (numeric id).
	const broken = `{"id":42}`
	spliceRawElement(t, s, broken)

	report, err := s.FixExistingRecords(ctx)
	if err != nil {
		t.Fatalf("a bad record must not abort the pass: %v", err)
	}
	if report.Fixed != 1 {
		t.Fatalf("expected 1 fixed record, got %d", report.Fixed)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 collected error, got %v", report.Errors)
	}

	// The rewrite keeps every element: the repaired record, the
	// healthy one, and the unreadable one verbatim.
	elements := rawElements(t, s)
	if len(elements) != 3 {
		t.Fatalf("stored sequence has %d elements, want 3", len(elements))
	}
	kept := false
	for _, el := range elements {
		if bytes.Equal(el, []byte(broken)) {
			kept = true
		}
	}
	if !kept {
		t.Fatalf("unreadable element must survive the rewrite untouched: %s", elements)
	}

	// The corrupted record really was repaired in the same pass.
	var repaired bool
	for _, el := range elements {
		var rec Record
		if json.Unmarshal(el, &rec) != nil {
			continue
		}
		if rec.ID == corrupted.ID && rec.Result.Summary.TotalQuestions == 2 {
			repaired = true
		}
	}
	if !repaired {
		t.Fatal("corrupted record not repaired alongside the bad element")
	}
}

func TestFixExistingRecords_NoFixesLeavesStorageUntouched(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	if _, err := s.SaveHistory(ctx, "ok", resultWith(1, 0), ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	spliceRawElement(t, s, `{"id":42}`)

	before, err := s.kv.Get(ctx, recordsKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	report, err := s.FixExistingRecords(ctx)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if report.Fixed != 0 || len(report.Errors) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	after, err := s.kv.Get(ctx, recordsKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("a pass with nothing to fix must not rewrite storage")
	}
}

func TestCheckDataHealth(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	if _, err := s.SaveHistory(ctx, "ok", resultWith(2, 1), ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	report, err := s.CheckDataHealth(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !report.Healthy() || report.Total != 1 {
		t.Fatalf("consistent data flagged: %+v", report)
	}

	corrupted := corruptSummary(t, s)
	report, err = s.CheckDataHealth(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if report.Healthy() {
		t.Fatal("count mismatch must be flagged")
	}
	found := false
	for _, issue := range report.Issues {
		if issue.RecordID == corrupted.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("issue must name the corrupted record: %+v", report.Issues)
	}

	// The diagnostic is read-only.
	fixReport, _ := s.FixExistingRecords(ctx)
	if fixReport.Fixed != 1 {
		t.Fatal("health check must not have repaired the record itself")
	}
}
