package engine

import (
	"errors"
	"testing"
	"time"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name  string
		input SegmentInput
		want  Track
	}{
		{
			name: "explicit track wins",
			input: SegmentInput{Start: 0, End: time.Second,
				Text: "[noise]", Track: TrackMain},
			want: TrackMain,
		},
		{
			name: "bracketed text is description",
			input: SegmentInput{Start: 0, End: time.Second,
				Text: "[door slams]"},
			want: TrackDescription,
		},
		{
			name: "parenthesized text is description",
			input: SegmentInput{Start: 0, End: time.Second,
				Text: "(sighs)"},
			want: TrackDescription,
		},
		{
			name: "cjk brackets are description",
			input: SegmentInput{Start: 0, End: time.Second,
				Text: "【雨音】"},
			want: TrackDescription,
		},
		{
			name: "ascii text is translation",
			input: SegmentInput{Start: 0, End: time.Second,
				Text: "Where are we going?"},
			want: TrackTranslation,
		},
		{
			name: "non-latin text is main",
			input: SegmentInput{Start: 0, End: time.Second,
				Text: "どこへ行くの"},
			want: TrackMain,
		},
		{
			name: "blank text stays unassigned",
			input: SegmentInput{Start: 0, End: time.Second,
				Text: "   "},
			want: TrackUnassigned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Options{})
			seg, err := e.AddSegment(tt.input)
			if err != nil {
				t.Fatalf("AddSegment error: %v", err)
			}
			if seg.Track != tt.want {
				t.Errorf("got track %s, want %s", seg.Track, tt.want)
			}
		})
	}
}

func TestSpeakerMapOverridesHeuristic(t *testing.T) {
	e := New(Options{})
	e.SetSpeakerMap(map[Track][]string{
		TrackMain:        {"NARRATOR"},
		TrackTranslation: {"interpreter"},
	})

	seg, err := e.AddSegment(SegmentInput{
		Start:   0,
		End:     time.Second,
		Text:    "plain ascii line",
		Speaker: "narrator", // case-insensitive lookup
	})
	if err != nil {
		t.Fatalf("AddSegment error: %v", err)
	}
	if seg.Track != TrackMain {
		t.Errorf("got track %s, want %s", seg.Track, TrackMain)
	}

	// unmapped speakers fall through to the text heuristic
	seg, err = e.AddSegment(SegmentInput{
		Start:   2 * time.Second,
		End:     3 * time.Second,
		Text:    "[thunder]",
		Speaker: "GUEST",
	})
	if err != nil {
		t.Fatalf("AddSegment error: %v", err)
	}
	if seg.Track != TrackDescription {
		t.Errorf("got track %s, want %s", seg.Track, TrackDescription)
	}
}

func TestLoadSegmentsValidatesWholeBatch(t *testing.T) {
	e := New(Options{})
	_, err := e.LoadSegments([]SegmentInput{
		{Start: 0, End: time.Second, Text: "good", Track: TrackMain},
		{Start: 5 * time.Second, End: 5 * time.Second, Text: "bad",
			Track: TrackMain},
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
	// nothing from the batch may land
	if got := e.Segments(); len(got) != 0 {
		t.Errorf("partial batch stored: %v", got)
	}
}

func TestLoadSegmentsClampsNegativeStart(t *testing.T) {
	e := New(Options{})
	segments, err := e.LoadSegments([]SegmentInput{
		{Start: -2 * time.Second, End: time.Second, Text: "early",
			Track: TrackMain},
	})
	if err != nil {
		t.Fatalf("LoadSegments error: %v", err)
	}
	if segments[0].Start != 0 {
		t.Errorf("got start %v, want 0", segments[0].Start)
	}
}

func TestReassignIsIdempotent(t *testing.T) {
	e := New(Options{})
	seg, err := e.AddSegment(SegmentInput{
		Start: 0, End: time.Second, Text: "hello", Track: TrackMain,
	})
	if err != nil {
		t.Fatalf("AddSegment error: %v", err)
	}

	if err := e.Reassign(seg.ID, TrackDescription); err != nil {
		t.Fatalf("Reassign error: %v", err)
	}
	if err := e.Reassign(seg.ID, TrackDescription); err != nil {
		t.Fatalf("second Reassign error: %v", err)
	}

	if got := e.TrackSegments(TrackDescription); len(got) != 1 {
		t.Errorf("expected single membership, got %d", len(got))
	}
	if got := e.TrackSegments(TrackMain); len(got) != 0 {
		t.Errorf("segment still on old track: %v", got)
	}

	if err := e.Reassign(seg.ID, "karaoke"); err == nil {
		t.Error("expected error for unknown track")
	}
}

func TestReassignKeepsLayerPin(t *testing.T) {
	e := New(Options{PixelsPerSecond: 100, LayerHeight: 20})
	seg, err := e.AddSegment(SegmentInput{
		Start: 0, End: 2 * time.Second, Text: "pinned", Track: TrackMain,
	})
	if err != nil {
		t.Fatalf("AddSegment error: %v", err)
	}

	session, err := e.BeginDrag(seg.ID, Point{})
	if err != nil {
		t.Fatalf("BeginDrag error: %v", err)
	}
	if _, err := e.UpdateDrag(session, Point{Y: 20}); err != nil {
		t.Fatalf("UpdateDrag error: %v", err)
	}
	if _, err := e.CommitDrag(session); err != nil {
		t.Fatalf("CommitDrag error: %v", err)
	}

	if err := e.Reassign(seg.ID, TrackDescription); err != nil {
		t.Fatalf("Reassign error: %v", err)
	}
	moved, err := e.Segment(seg.ID)
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	if !moved.LayerPinned || moved.Layer != 1 {
		t.Errorf(
			"pin lost on reassign: layer=%d pinned=%v",
			moved.Layer,
			moved.LayerPinned,
		)
	}

	if err := e.ClearLayerPin(seg.ID); err != nil {
		t.Fatalf("ClearLayerPin error: %v", err)
	}
	cleared, _ := e.Segment(seg.ID)
	if cleared.LayerPinned {
		t.Error("pin not cleared")
	}
	if cleared.Layer != 0 {
		t.Errorf("allocator did not reclaim layer: %d", cleared.Layer)
	}
}

func TestRemoveSegment(t *testing.T) {
	e := New(Options{})
	segments, err := e.LoadSegments([]SegmentInput{
		{Start: 0, End: 3 * time.Second, Text: "a", Track: TrackMain},
		{Start: 2 * time.Second, End: 4 * time.Second, Text: "b",
			Track: TrackMain},
	})
	if err != nil {
		t.Fatalf("LoadSegments error: %v", err)
	}

	if err := e.RemoveSegment(segments[0].ID); err != nil {
		t.Fatalf("RemoveSegment error: %v", err)
	}
	if _, err := e.Segment(segments[0].ID); err == nil {
		t.Error("removed segment still resolvable")
	}

	// survivor drops back to layer 0 once the overlap is gone
	remaining, _ := e.Segment(segments[1].ID)
	if remaining.Layer != 0 {
		t.Errorf("got layer %d, want 0", remaining.Layer)
	}

	if err := e.RemoveSegment(999); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestFindSegmentTolerance(t *testing.T) {
	e := New(Options{})
	_, err := e.LoadSegments([]SegmentInput{
		{Start: 10 * time.Second, End: 12 * time.Second, Text: "  target  ",
			Track: TrackMain},
	})
	if err != nil {
		t.Fatalf("LoadSegments error: %v", err)
	}

	// 30ms off on both ends, inside the tolerance
	seg, ok := e.FindSegment(
		10*time.Second+30*time.Millisecond,
		12*time.Second-30*time.Millisecond,
		"target",
	)
	if !ok {
		t.Fatal("expected a match at 30ms offset")
	}
	if seg.Text != "  target  " {
		t.Errorf("matched wrong segment: %+v", seg)
	}

	// 60ms off is outside
	if _, ok := e.FindSegment(
		10*time.Second+60*time.Millisecond,
		12*time.Second,
		"target",
	); ok {
		t.Error("matched outside the tolerance window")
	}

	// right timing, wrong text
	if _, ok := e.FindSegment(
		10*time.Second,
		12*time.Second,
		"other",
	); ok {
		t.Error("matched despite text mismatch")
	}

	// empty text matches on time alone
	if _, ok := e.FindSegment(10*time.Second, 12*time.Second, ""); !ok {
		t.Error("time-only lookup failed")
	}
}

func TestSegmentsAreCopies(t *testing.T) {
	e := New(Options{})
	seg, err := e.AddSegment(SegmentInput{
		Start: 0, End: time.Second, Text: "original", Track: TrackMain,
	})
	if err != nil {
		t.Fatalf("AddSegment error: %v", err)
	}

	copies := e.Segments()
	copies[0].Text = "mutated"

	fresh, _ := e.Segment(seg.ID)
	if fresh.Text != "original" {
		t.Error("accessor leaked internal state")
	}
}
