package engine

import (
	"fmt"
	"time"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

// data-only persisted form of one segment
type SegmentState struct {
	ID          int           `json:"id"`
	Start       time.Duration `json:"start"`
	End         time.Duration `json:"end"`
	Text        string        `json:"text"`
	Speaker     string        `json:"speaker,omitempty"`
	Track       Track         `json:"track"`
	Layer       int           `json:"layer"`
	LayerPinned bool          `json:"layerPinned,omitempty"`
}

// Snapshot is the complete serializable engine state: segments with their
// track and layer assignment, edit history, and track UI flags. It holds
// no references to live engine objects and round-trips through JSON
// unchanged.
type Snapshot struct {
	Version  int                  `json:"version"`
	SavedAt  time.Time            `json:"savedAt"`
	Source   string               `json:"source"`
	Segments []SegmentState       `json:"segments"`
	History  []HistoryEntry       `json:"history,omitempty"`
	Tracks   map[Track]TrackFlags `json:"tracks,omitempty"`
}

// options for Import
type ImportOptions struct {
	// merge into the current state instead of replacing it; imported
	// segments whose id collides get a fresh id
	PreserveExisting bool
}

// Export deep-copies the full engine state into one snapshot value.
func (e *Engine) Export(source string) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Version:  SnapshotVersion,
		SavedAt:  time.Now().UTC(),
		Source:   source,
		Segments: make([]SegmentState, 0, len(e.store.all())),
		History:  e.historiesLocked(),
		Tracks:   make(map[Track]TrackFlags, len(e.tracks)),
	}

	for _, seg := range e.store.all() {
		snap.Segments = append(snap.Segments, SegmentState{
			ID:          seg.ID,
			Start:       seg.Start,
			End:         seg.End,
			Text:        seg.Text,
			Speaker:     seg.Speaker,
			Track:       seg.Track,
			Layer:       seg.Layer,
			LayerPinned: seg.LayerPinned,
		})
	}
	for track, flags := range e.tracks {
		snap.Tracks[track] = *flags
	}
	return snap
}

// Import replaces (or, with PreserveExisting, merges) the engine state
// from a snapshot. The snapshot is validated in full before any mutation,
// so a failed import leaves the engine untouched. Layers are recomputed
// for every track afterwards.
func (e *Engine) Import(snap Snapshot, opts ImportOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateSnapshot(snap); err != nil {
		return err
	}

	next := newStore()
	nextHistory := make(map[int]*HistoryEntry)

	if opts.PreserveExisting {
		for _, seg := range e.store.all() {
			next.add(*seg)
		}
		for id, entry := range e.history {
			cp := copyHistoryEntry(entry)
			nextHistory[id] = &cp
		}
	}

	for i := range snap.Segments {
		state := snap.Segments[i]
		seg := Segment{
			ID:          state.ID,
			Start:       state.Start,
			End:         state.End,
			Text:        state.Text,
			Speaker:     state.Speaker,
			Track:       state.Track,
			Layer:       state.Layer,
			LayerPinned: state.LayerPinned,
		}
		if opts.PreserveExisting {
			if _, taken := next.get(seg.ID); taken {
				seg.ID = 0 // remap on add
			}
		}
		stored := next.add(seg)

		for _, entry := range snap.History {
			if entry.SegmentID != state.ID {
				continue
			}
			cp := entry
			cp.SegmentID = stored.ID
			cp.Changes = append([]string(nil), entry.Changes...)
			nextHistory[stored.ID] = &cp
		}
	}

	e.store = next
	e.history = nextHistory
	e.drags = make(map[int]*DragSession)

	if snap.Tracks != nil && !opts.PreserveExisting {
		for track, flags := range snap.Tracks {
			if current, ok := e.tracks[track]; ok {
				*current = flags
			}
		}
	}

	for track := range e.tracks {
		e.recomputeTrack(track)
	}
	return nil
}

// validateSnapshot checks the whole snapshot up front; Import mutates
// nothing until this passes.
func validateSnapshot(snap Snapshot) error {
	if snap.Version <= 0 || snap.Version > SnapshotVersion {
		return fmt.Errorf(
			"%w: unsupported version %d",
			ErrSchema,
			snap.Version,
		)
	}
	if snap.Segments == nil {
		return fmt.Errorf("%w: missing segments", ErrSchema)
	}

	seen := make(map[int]bool, len(snap.Segments))
	for i, state := range snap.Segments {
		if state.ID <= 0 {
			return fmt.Errorf(
				"%w: segment %d has invalid id %d",
				ErrSchema,
				i,
				state.ID,
			)
		}
		if seen[state.ID] {
			return fmt.Errorf(
				"%w: duplicate segment id %d",
				ErrSchema,
				state.ID,
			)
		}
		seen[state.ID] = true

		if state.Start < 0 || state.End <= state.Start {
			return fmt.Errorf(
				"%w: segment %d: %w: [%v, %v]",
				ErrSchema,
				state.ID,
				ErrInvalidRange,
				state.Start,
				state.End,
			)
		}
		if !ValidTrack(state.Track) {
			return fmt.Errorf(
				"%w: segment %d has unknown track %q",
				ErrSchema,
				state.ID,
				state.Track,
			)
		}
	}

	for _, entry := range snap.History {
		if !seen[entry.SegmentID] {
			return fmt.Errorf(
				"%w: history entry for unknown segment %d",
				ErrSchema,
				entry.SegmentID,
			)
		}
	}

	for track := range snap.Tracks {
		if !ValidTrack(track) {
			return fmt.Errorf("%w: unknown track %q", ErrSchema, track)
		}
	}
	return nil
}
