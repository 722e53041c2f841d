package engine

import (
	"testing"
	"time"
)

func TestActiveSegmentsAtBounds(t *testing.T) {
	e := New(Options{})
	segments, err := e.LoadSegments([]SegmentInput{
		{Start: 2 * time.Second, End: 5 * time.Second, Text: "hi",
			Track: TrackMain},
	})
	if err != nil {
		t.Fatalf("LoadSegments error: %v", err)
	}
	id := segments[0].ID

	active := []time.Duration{
		2 * time.Second,
		3500 * time.Millisecond,
		5 * time.Second,
	}
	for _, at := range active {
		if !containsSegment(e.ActiveSegmentsAt(at), id) {
			t.Errorf("segment not active at %v", at)
		}
	}

	inactive := []time.Duration{
		1999 * time.Millisecond,
		5001 * time.Millisecond,
	}
	for _, at := range inactive {
		if containsSegment(e.ActiveSegmentsAt(at), id) {
			t.Errorf("segment unexpectedly active at %v", at)
		}
	}
}

func containsSegment(segments []Segment, id int) bool {
	for _, seg := range segments {
		if seg.ID == id {
			return true
		}
	}
	return false
}

func TestComposeDisplayLinesOrderAndVisibility(t *testing.T) {
	e := New(Options{})
	_, err := e.LoadSegments([]SegmentInput{
		{Start: 0, End: 10 * time.Second, Text: "dialogue",
			Track: TrackMain},
		{Start: 0, End: 10 * time.Second, Text: "[door slams]",
			Track: TrackDescription},
		{Start: 0, End: 10 * time.Second, Text: "dialogo",
			Track: TrackTranslation},
	})
	if err != nil {
		t.Fatalf("LoadSegments error: %v", err)
	}

	lines := e.ComposeDisplayLines(5*time.Second, nil)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	wantOrder := []Track{TrackMain, TrackDescription, TrackTranslation}
	for i, track := range wantOrder {
		if lines[i].Track != track {
			t.Errorf("line %d: got track %s, want %s", i, lines[i].Track, track)
		}
	}

	e.SetTrackVisible(TrackDescription, false)
	lines = e.ComposeDisplayLines(5*time.Second, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines with hidden track, got %d", len(lines))
	}
	for _, line := range lines {
		if line.Track == TrackDescription {
			t.Error("hidden track emitted a line")
		}
	}
}

func TestComposeDisplayLinesSkipsEmptyText(t *testing.T) {
	e := New(Options{})
	_, err := e.LoadSegments([]SegmentInput{
		{Start: 0, End: 10 * time.Second, Text: "   ", Track: TrackMain},
		{Start: 0, End: 10 * time.Second, Text: "spoken", Track: TrackMain},
	})
	if err != nil {
		t.Fatalf("LoadSegments error: %v", err)
	}

	lines := e.ComposeDisplayLines(1*time.Second, nil)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Text != "spoken" {
		t.Errorf("got %q, want %q", lines[0].Text, "spoken")
	}
}

func TestComposeDisplayLinesNoFallbackAcrossTracks(t *testing.T) {
	e := New(Options{})
	_, err := e.LoadSegments([]SegmentInput{
		{Start: 0, End: 2 * time.Second, Text: "early", Track: TrackMain},
		{Start: 5 * time.Second, End: 8 * time.Second, Text: "[late]",
			Track: TrackDescription},
	})
	if err != nil {
		t.Fatalf("LoadSegments error: %v", err)
	}

	// at t=3.5s nothing is active: no line at all, no borrowing
	if lines := e.ComposeDisplayLines(3500*time.Millisecond, nil); len(lines) != 0 {
		t.Errorf("expected no lines, got %v", lines)
	}
}

func TestComposeSingleLine(t *testing.T) {
	e := New(Options{})
	_, err := e.LoadSegments([]SegmentInput{
		{Start: 5 * time.Second, End: 8 * time.Second, Text: "[hum]",
			Track: TrackDescription},
		{Start: 6 * time.Second, End: 9 * time.Second, Text: "words",
			Track: TrackMain},
	})
	if err != nil {
		t.Fatalf("LoadSegments error: %v", err)
	}

	line, ok := e.ComposeSingleLine(5500 * time.Millisecond)
	if !ok {
		t.Fatal("expected a line")
	}
	// first active segment across all tracks, regardless of track
	if line.Track != TrackDescription || line.Text != "[hum]" {
		t.Errorf("got %+v, want description [hum]", line)
	}

	if _, ok := e.ComposeSingleLine(20 * time.Second); ok {
		t.Error("expected no line past the timeline")
	}
}
