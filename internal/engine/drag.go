package engine

import (
	"fmt"
	"math"
	"time"
)

// magnetic snapping windows
const (
	snapBoundaryWindow = 500 * time.Millisecond
	snapSecondWindow   = 300 * time.Millisecond
)

// 2D pointer position or delta in pixels
type Point struct {
	X float64
	Y float64
}

// ephemeral state for one active pointer drag; destroyed on commit or
// cancellation
type DragSession struct {
	segmentID     int
	originStart   time.Duration
	originLayer   int
	pointerOrigin Point

	// last proposal from UpdateDrag; commit applies it
	proposal *DragUpdate
}

func (s *DragSession) SegmentID() int {
	return s.segmentID
}

// proposed position for the dragged segment; Collision is advisory and
// never blocks a commit
type DragUpdate struct {
	ProposedStart time.Duration
	ProposedLayer int
	Collision     bool
}

// outcome of a committed drag
type DragResult struct {
	Committed bool
	Collision bool
}

// BeginDrag opens a drag session for a segment. It fails when the
// segment's track is locked. A session already open for the same segment
// is implicitly cancelled so two concurrent deltas can never both apply.
func (e *Engine) BeginDrag(id int, pointerOrigin Point) (*DragSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seg, ok := e.store.get(id)
	if !ok {
		return nil, fmt.Errorf("segment %d not found", id)
	}
	if flags, ok := e.tracks[seg.Track]; ok && flags.Locked {
		return nil, fmt.Errorf("%w: %s", ErrLockedTrack, seg.Track)
	}

	session := &DragSession{
		segmentID:     id,
		originStart:   seg.Start,
		originLayer:   seg.Layer,
		pointerOrigin: pointerOrigin,
	}
	e.drags[id] = session
	return session, nil
}

// UpdateDrag converts a pointer delta into a proposed (time, layer) pair,
// applying snapping. The segment is not mutated.
func (e *Engine) UpdateDrag(
	session *DragSession,
	delta Point,
) (DragUpdate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seg, err := e.activeDragSegment(session)
	if err != nil {
		return DragUpdate{}, err
	}

	proposed := e.proposedPosition(session, seg, delta)
	proposed.Collision = e.collides(seg, proposed.ProposedStart,
		proposed.ProposedStart+seg.Duration(), proposed.ProposedLayer)
	session.proposal = &proposed
	return proposed, nil
}

// CommitDrag writes the last proposed position into the store, pins the
// layer as a user override, and discards the session. It always succeeds;
// an overlap is reported in the result, never raised. A session that was
// never updated commits the origin position unchanged.
func (e *Engine) CommitDrag(session *DragSession) (DragResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seg, err := e.activeDragSegment(session)
	if err != nil {
		return DragResult{}, err
	}

	proposed := DragUpdate{
		ProposedStart: session.originStart,
		ProposedLayer: session.originLayer,
	}
	if session.proposal != nil {
		proposed = *session.proposal
	}
	collision := e.collides(seg, proposed.ProposedStart,
		proposed.ProposedStart+seg.Duration(), proposed.ProposedLayer)

	duration := seg.Duration()
	seg.Start = proposed.ProposedStart
	seg.End = proposed.ProposedStart + duration
	seg.Layer = proposed.ProposedLayer
	seg.LayerPinned = true

	delete(e.drags, session.segmentID)
	e.store.sort()
	e.recomputeTrack(seg.Track)

	return DragResult{Committed: true, Collision: collision}, nil
}

// CancelDrag discards the session without mutating the segment.
func (e *Engine) CancelDrag(session *DragSession) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if session == nil {
		return
	}
	if active, ok := e.drags[session.segmentID]; ok && active == session {
		delete(e.drags, session.segmentID)
	}
}

func (e *Engine) activeDragSegment(session *DragSession) (*Segment, error) {
	if session == nil {
		return nil, fmt.Errorf("no drag session")
	}
	active, ok := e.drags[session.segmentID]
	if !ok || active != session {
		return nil, fmt.Errorf(
			"drag session for segment %d is no longer active",
			session.segmentID,
		)
	}
	seg, ok := e.store.get(session.segmentID)
	if !ok {
		return nil, fmt.Errorf("segment %d not found", session.segmentID)
	}
	return seg, nil
}

func (e *Engine) proposedPosition(
	session *DragSession,
	seg *Segment,
	delta Point,
) DragUpdate {
	deltaTime := time.Duration(delta.X / e.pixelsPerSecond *
		float64(time.Second))
	start := session.originStart + deltaTime
	if start < 0 {
		start = 0
	}
	start = e.snapStart(seg.ID, start)

	layer := int(math.Floor(
		(float64(session.originLayer)*e.layerHeight + delta.Y +
			e.layerHeight/2) / e.layerHeight,
	))
	if layer < 0 {
		layer = 0
	}
	if layer > e.layerCap-1 {
		layer = e.layerCap - 1
	}

	return DragUpdate{ProposedStart: start, ProposedLayer: layer}
}

// snapStart adjusts a proposed start time to the closest snap candidate:
// any other segment's start or end boundary within 500ms, or the nearest
// integer second within 300ms when it is strictly closer than the best
// boundary. The globally closest candidate wins.
func (e *Engine) snapStart(segID int, proposed time.Duration) time.Duration {
	best := proposed
	bestDist := time.Duration(math.MaxInt64)

	for _, other := range e.store.all() {
		if other.ID == segID {
			continue
		}
		for _, boundary := range []time.Duration{other.Start, other.End} {
			dist := absDuration(boundary - proposed)
			if dist <= snapBoundaryWindow && dist < bestDist {
				best = boundary
				bestDist = dist
			}
		}
	}

	second := proposed.Round(time.Second)
	if dist := absDuration(second - proposed); dist <= snapSecondWindow &&
		dist < bestDist {
		best = second
	}

	return best
}

// collides reports whether the proposed placement overlaps another segment
// already on the same track and layer, excluding the dragged segment.
func (e *Engine) collides(
	seg *Segment,
	start, end time.Duration,
	layer int,
) bool {
	for _, other := range e.store.byTrack(seg.Track) {
		if other.ID == seg.ID || other.Layer != layer {
			continue
		}
		if start < other.End && other.Start < end {
			return true
		}
	}
	return false
}
