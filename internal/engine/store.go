package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// time tolerance for structural identity matching of foreign segment data
const identityTolerance = 50 * time.Millisecond

// canonical ordered collection of segments; owns identity
type store struct {
	segments []*Segment
	byID     map[int]*Segment
	nextID   int
}

func newStore() *store {
	return &store{
		byID:   make(map[int]*Segment),
		nextID: 1,
	}
}

// inserts a segment, assigning a fresh id when none is carried over.
// Ordering by start time (ties by id) is maintained on every insert.
func (s *store) add(seg Segment) *Segment {
	if seg.ID == 0 {
		seg.ID = s.nextID
	}
	if seg.ID >= s.nextID {
		s.nextID = seg.ID + 1
	}

	stored := &seg
	s.byID[stored.ID] = stored
	s.segments = append(s.segments, stored)
	s.sort()
	return stored
}

func (s *store) remove(id int) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, seg := range s.segments {
		if seg.ID == id {
			s.segments = append(s.segments[:i], s.segments[i+1:]...)
			break
		}
	}
	return true
}

func (s *store) get(id int) (*Segment, bool) {
	seg, ok := s.byID[id]
	return seg, ok
}

func (s *store) all() []*Segment {
	return s.segments
}

func (s *store) byTrack(track Track) []*Segment {
	var out []*Segment
	for _, seg := range s.segments {
		if seg.Track == track {
			out = append(out, seg)
		}
	}
	return out
}

// best-effort structural identity resolution for imported or externally
// produced segment data that lacks a reliable id. Matches by time within
// the tolerance and, when text is supplied, exact trimmed text equality.
// The first structural match wins; two segments with identical timing and
// text are indistinguishable here.
func (s *store) findByTimeAndText(
	start, end time.Duration,
	text string,
) (*Segment, bool) {
	text = strings.TrimSpace(text)
	for _, seg := range s.segments {
		if absDuration(seg.Start-start) >= identityTolerance {
			continue
		}
		if absDuration(seg.End-end) >= identityTolerance {
			continue
		}
		if text != "" && strings.TrimSpace(seg.Text) != text {
			continue
		}
		return seg, true
	}
	return nil, false
}

func (s *store) sort() {
	sort.SliceStable(s.segments, func(i, j int) bool {
		if s.segments[i].Start != s.segments[j].Start {
			return s.segments[i].Start < s.segments[j].Start
		}
		return s.segments[i].ID < s.segments[j].ID
	})
}

func (s *store) validateRange(start, end time.Duration) error {
	if start < 0 {
		return fmt.Errorf("%w: negative start time %v", ErrInvalidRange, start)
	}
	if end <= start {
		return fmt.Errorf(
			"%w: end %v not after start %v",
			ErrInvalidRange,
			end,
			start,
		)
	}
	return nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
