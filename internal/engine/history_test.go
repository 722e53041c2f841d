package engine

import (
	"errors"
	"testing"
	"time"
)

func loadDescriptions(t *testing.T, e *Engine, texts ...string) []Segment {
	t.Helper()
	inputs := make([]SegmentInput, 0, len(texts))
	for i, text := range texts {
		start := time.Duration(i*10) * time.Second
		inputs = append(inputs, SegmentInput{
			Start: start,
			End:   start + 5*time.Second,
			Text:  text,
			Track: TrackDescription,
		})
	}
	segments, err := e.LoadSegments(inputs)
	if err != nil {
		t.Fatalf("LoadSegments error: %v", err)
	}
	return segments
}

func TestRecordEditCapturesOriginal(t *testing.T) {
	e := New(Options{})
	segments := loadDescriptions(t, e, "[rain]")
	id := segments[0].ID

	if err := e.RecordEdit(id, "[heavy rain]", "manual"); err != nil {
		t.Fatalf("RecordEdit error: %v", err)
	}
	if err := e.RecordEdit(id, "[storm]", "manual"); err != nil {
		t.Fatalf("RecordEdit error: %v", err)
	}

	entry, ok := e.History(id)
	if !ok {
		t.Fatal("expected a history entry")
	}
	if entry.OriginalText != "[rain]" {
		t.Errorf("original: got %q, want %q", entry.OriginalText, "[rain]")
	}
	if entry.UpdatedText != "[storm]" {
		t.Errorf("updated: got %q, want %q", entry.UpdatedText, "[storm]")
	}
	if len(entry.Changes) != 1 || entry.Changes[0] != "[heavy rain]" {
		t.Errorf("changes: got %v, want [[heavy rain]]", entry.Changes)
	}
	if entry.Reverted {
		t.Error("entry should not be marked reverted")
	}

	seg, err := e.Segment(id)
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	if seg.Text != "[storm]" {
		t.Errorf("segment text: got %q, want %q", seg.Text, "[storm]")
	}
}

func TestRecordEditIdenticalTextIsNoOp(t *testing.T) {
	e := New(Options{})
	segments := loadDescriptions(t, e, "[rain]")
	id := segments[0].ID

	if err := e.RecordEdit(id, "[rain]", "manual"); err != nil {
		t.Fatalf("RecordEdit error: %v", err)
	}
	if _, ok := e.History(id); ok {
		t.Error("identical text should not create a history entry")
	}
}

func TestApplyReplacementsTruncatesToTargetLength(t *testing.T) {
	e := New(Options{})
	segments := loadDescriptions(t, e, "one", "two", "three", "four", "five")
	target := segments[3].ID

	applied := e.ApplyReplacements([]Replacement{
		{
			SegmentID:    target,
			NewText:      "This is a much longer replacement text",
			TargetLength: 10,
		},
	}, "test")

	if len(applied) != 1 {
		t.Fatalf("expected 1 applied, got %d", len(applied))
	}
	if applied[0].NewText != "This is a" {
		t.Errorf("got %q, want %q", applied[0].NewText, "This is a")
	}

	seg, err := e.Segment(target)
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	if seg.Text != "This is a" {
		t.Errorf("segment text: got %q, want %q", seg.Text, "This is a")
	}
}

func TestApplyReplacementsResolvesByTime(t *testing.T) {
	e := New(Options{})
	segments := loadDescriptions(t, e, "first", "second")

	applied := e.ApplyReplacements([]Replacement{
		{
			// 30ms off, inside the 50ms identity tolerance
			Start:   segments[1].Start + 30*time.Millisecond,
			End:     segments[1].End - 30*time.Millisecond,
			NewText: "matched by time",
		},
	}, "test")

	if len(applied) != 1 {
		t.Fatalf("expected 1 applied, got %d", len(applied))
	}
	if applied[0].SegmentID != segments[1].ID {
		t.Errorf(
			"resolved segment %d, want %d",
			applied[0].SegmentID,
			segments[1].ID,
		)
	}
}

func TestApplyReplacementsFallsBackToDescriptionOrder(t *testing.T) {
	e := New(Options{})
	segments := loadDescriptions(t, e, "first", "second", "third")

	applied := e.ApplyReplacements([]Replacement{
		{NewText: "new first"},
		{NewText: "new second"},
	}, "test")

	if len(applied) != 2 {
		t.Fatalf("expected 2 applied, got %d", len(applied))
	}
	if applied[0].SegmentID != segments[0].ID ||
		applied[1].SegmentID != segments[1].ID {
		t.Errorf(
			"fallback order: got %d,%d want %d,%d",
			applied[0].SegmentID,
			applied[1].SegmentID,
			segments[0].ID,
			segments[1].ID,
		)
	}
}

func TestApplyReplacementsSkipsEmptyAfterTruncation(t *testing.T) {
	e := New(Options{})
	segments := loadDescriptions(t, e, "keep me")

	applied := e.ApplyReplacements([]Replacement{
		{SegmentID: segments[0].ID, NewText: "   x", TargetLength: 3},
	}, "test")

	if len(applied) != 0 {
		t.Errorf("expected no applied entries, got %v", applied)
	}
	seg, _ := e.Segment(segments[0].ID)
	if seg.Text != "keep me" {
		t.Errorf("segment text changed: %q", seg.Text)
	}
}

func TestRevertRestoresOriginalAndIsIdempotent(t *testing.T) {
	e := New(Options{})
	segments := loadDescriptions(t, e, "[rain]")
	id := segments[0].ID

	if err := e.RecordEdit(id, "[storm]", "manual"); err != nil {
		t.Fatalf("RecordEdit error: %v", err)
	}
	if err := e.Revert(id); err != nil {
		t.Fatalf("Revert error: %v", err)
	}

	first, _ := e.History(id)
	seg, _ := e.Segment(id)
	if seg.Text != "[rain]" {
		t.Errorf("segment text: got %q, want %q", seg.Text, "[rain]")
	}
	if !first.Reverted {
		t.Error("entry not marked reverted")
	}

	if err := e.Revert(id); err != nil {
		t.Fatalf("second Revert error: %v", err)
	}
	second, _ := e.History(id)
	if !second.Reverted {
		t.Error("reverted flag lost on second revert")
	}
	if len(second.Changes) != len(first.Changes) {
		t.Errorf(
			"second revert grew changes: %d -> %d",
			len(first.Changes),
			len(second.Changes),
		)
	}
}

func TestRevertWithoutHistory(t *testing.T) {
	e := New(Options{})
	segments := loadDescriptions(t, e, "untouched")

	err := e.Revert(segments[0].ID)
	if !errors.Is(err, ErrNoHistory) {
		t.Errorf("got %v, want ErrNoHistory", err)
	}
}
