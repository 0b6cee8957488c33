package history

import (
	"context"
	"testing"
	"time"
)

func ptr(f float64) *float64 { return &f }

func TestFilter_MinCorrectRateFull(t *testing.T) {
	s, clock := newTestStore(t, Options{})
	ctx := context.Background()

	s.SaveHistory(ctx, "all-right", resultWith(3, 0), "")
	clock.advance(time.Minute)
	s.SaveHistory(ctx, "one-wrong", resultWith(2, 1), "")
	clock.advance(time.Minute)
	s.SaveHistory(ctx, "empty", resultWith(0, 0), "")

	got, err := s.GetFilteredHistory(ctx, Filter{MinCorrectRate: ptr(100)})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0].ImageRef != "all-right" {
		t.Fatalf("min rate 100 must keep only fully correct non-empty records: %+v", got)
	}
	sum := got[0].Result.Summary
	if sum.CorrectCount != sum.TotalQuestions || sum.TotalQuestions == 0 {
		t.Fatalf("matched record violates the property: %+v", sum)
	}
}

func TestFilter_DateRange(t *testing.T) {
	s, clock := newTestStore(t, Options{})
	ctx := context.Background()
	start := clock.now()

	s.SaveHistory(ctx, "early", resultWith(1, 0), "")
	clock.advance(2 * time.Hour)
	s.SaveHistory(ctx, "late", resultWith(1, 0), "")

	got, err := s.GetFilteredHistory(ctx, Filter{
		From: start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0].ImageRef != "late" {
		t.Fatalf("date range filter failed: %+v", got)
	}

	got, _ = s.GetFilteredHistory(ctx, Filter{To: start.Add(time.Hour)})
	if len(got) != 1 || got[0].ImageRef != "early" {
		t.Fatalf("upper bound filter failed: %+v", got)
	}
}

func TestFilter_FreeText(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	s.SaveHistory(ctx, "img", resultWith(1, 0), "algebra-set-7")
	s.SaveHistory(ctx, "img", resultWith(1, 0), "geometry-set-2")

	got, err := s.GetFilteredHistory(ctx, Filter{Query: "algebra"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0].TaskID != "algebra-set-7" {
		t.Fatalf("task-id substring match failed: %+v", got)
	}

	// Display time substring also matches.
	got, _ = s.GetFilteredHistory(ctx, Filter{Query: "2025-06-01"})
	if len(got) != 2 {
		t.Fatalf("display-time substring match failed: %d records", len(got))
	}
}

func TestFilter_HasWrongAndQuestionCount(t *testing.T) {
	s, clock := newTestStore(t, Options{})
	ctx := context.Background()

	s.SaveHistory(ctx, "clean", resultWith(4, 0), "")
	clock.advance(time.Minute)
	s.SaveHistory(ctx, "flawed", resultWith(1, 2), "")

	got, err := s.GetFilteredHistory(ctx, Filter{HasWrong: true})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0].ImageRef != "flawed" {
		t.Fatalf("has-wrong filter failed: %+v", got)
	}

	got, _ = s.GetFilteredHistory(ctx, Filter{MinQuestions: 4})
	if len(got) != 1 || got[0].ImageRef != "clean" {
		t.Fatalf("min question count filter failed: %+v", got)
	}
	got, _ = s.GetFilteredHistory(ctx, Filter{MaxQuestions: 3})
	if len(got) != 1 || got[0].ImageRef != "flawed" {
		t.Fatalf("max question count filter failed: %+v", got)
	}
}

func TestFilter_PredicatesCompose(t *testing.T) {
	s, clock := newTestStore(t, Options{})
	ctx := context.Background()

	s.SaveHistory(ctx, "a", resultWith(2, 1), "math-1")
	clock.advance(time.Minute)
	s.SaveHistory(ctx, "b", resultWith(2, 1), "math-2")
	clock.advance(time.Minute)
	s.SaveHistory(ctx, "c", resultWith(3, 0), "math-3")

	// AND of free text + has-wrong keeps only math-1 and math-2;
	// adding a rate bound keeps the two with 2/3 correct.
	got, err := s.GetFilteredHistory(ctx, Filter{
		Query:          "math",
		HasWrong:       true,
		MinCorrectRate: ptr(50),
	})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("composed predicates failed: %+v", got)
	}

	// An empty filter matches everything.
	got, _ = s.GetFilteredHistory(ctx, Filter{})
	if len(got) != 3 {
		t.Fatalf("empty filter must match all records, got %d", len(got))
	}
}
