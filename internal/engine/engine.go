package engine

import (
	"fmt"
	"sync"
	"time"
)

// rendering scale defaults used to convert pointer deltas
const (
	DefaultPixelsPerSecond = 80.0
	DefaultLayerHeight     = 24.0
)

// Options configures a new Engine. Zero values fall back to defaults.
type Options struct {
	LayerCap        int
	PixelsPerSecond float64
	LayerHeight     float64
}

// Engine owns the segment store, classifier state, edit history, and track
// flags. It hands out value copies and accepts only intent calls; every
// entry point is serialized through one mutex so a multi-threaded host
// still observes the single-threaded contract.
type Engine struct {
	mu sync.Mutex

	store      *store
	classifier *classifier
	history    map[int]*HistoryEntry
	tracks     map[Track]*TrackFlags
	drags      map[int]*DragSession
	overflow   map[Track][]int

	layerCap        int
	pixelsPerSecond float64
	layerHeight     float64
}

func New(opts Options) *Engine {
	if opts.LayerCap <= 0 {
		opts.LayerCap = DefaultLayerCap
	}
	if opts.PixelsPerSecond <= 0 {
		opts.PixelsPerSecond = DefaultPixelsPerSecond
	}
	if opts.LayerHeight <= 0 {
		opts.LayerHeight = DefaultLayerHeight
	}

	e := &Engine{
		store:           newStore(),
		classifier:      newClassifier(),
		history:         make(map[int]*HistoryEntry),
		tracks:          make(map[Track]*TrackFlags),
		drags:           make(map[int]*DragSession),
		overflow:        make(map[Track][]int),
		layerCap:        opts.LayerCap,
		pixelsPerSecond: opts.PixelsPerSecond,
		layerHeight:     opts.LayerHeight,
	}
	for _, track := range []Track{
		TrackMain,
		TrackTranslation,
		TrackDescription,
		TrackUnassigned,
	} {
		e.tracks[track] = &TrackFlags{Visible: true}
	}
	return e
}

// raw segment data accepted from any upstream subtitle source
type SegmentInput struct {
	Start   time.Duration
	End     time.Duration
	Text    string
	Speaker string

	// optional explicit assignment; wins over the default policy
	Track Track
}

// LoadSegments validates, classifies, and stores a batch of segments,
// assigning each a fresh stable id. Validation runs over the whole batch
// before anything is stored. Negative start times are clamped to zero.
func (e *Engine) LoadSegments(inputs []SegmentInput) ([]Segment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, in := range inputs {
		start := in.Start
		if start < 0 {
			start = 0
		}
		if err := e.store.validateRange(start, in.End); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}

	touched := make(map[Track]bool)
	out := make([]Segment, 0, len(inputs))
	for _, in := range inputs {
		seg := Segment{
			Start:   in.Start,
			End:     in.End,
			Text:    in.Text,
			Speaker: in.Speaker,
			Track:   in.Track,
		}
		if seg.Start < 0 {
			seg.Start = 0
		}
		seg.Track = e.classifier.classify(seg)
		stored := e.store.add(seg)
		touched[stored.Track] = true
		out = append(out, *stored)
	}

	for track := range touched {
		e.recomputeTrack(track)
	}

	// re-read after layer assignment
	for i := range out {
		if seg, ok := e.store.get(out[i].ID); ok {
			out[i] = *seg
		}
	}
	return out, nil
}

// AddSegment stores one segment; see LoadSegments.
func (e *Engine) AddSegment(in SegmentInput) (Segment, error) {
	segs, err := e.LoadSegments([]SegmentInput{in})
	if err != nil {
		return Segment{}, err
	}
	return segs[0], nil
}

// RemoveSegment drops a segment; only its track's layers are recomputed.
func (e *Engine) RemoveSegment(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	seg, ok := e.store.get(id)
	if !ok {
		return fmt.Errorf("segment %d not found", id)
	}
	track := seg.Track
	e.store.remove(id)
	delete(e.drags, id)
	e.recomputeTrack(track)
	return nil
}

// SetSpeakerMap seeds the classifier's speaker-to-track mapping used for
// segments loaded afterwards.
func (e *Engine) SetSpeakerMap(mapping map[Track][]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classifier.setSpeakerMap(mapping)
}

// Reassign moves a segment to another track. Reassigning to the current
// track is a no-op: no duplicate membership, no layer recompute.
func (e *Engine) Reassign(id int, track Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !ValidTrack(track) {
		return fmt.Errorf("unknown track %q", track)
	}
	seg, ok := e.store.get(id)
	if !ok {
		return fmt.Errorf("segment %d not found", id)
	}
	if seg.Track == track {
		return nil
	}

	old := seg.Track
	seg.Track = track
	e.recomputeTrack(old)
	e.recomputeTrack(track)
	return nil
}

// ClearLayerPin releases a user layer override so the allocator is free to
// place the segment again.
func (e *Engine) ClearLayerPin(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	seg, ok := e.store.get(id)
	if !ok {
		return fmt.Errorf("segment %d not found", id)
	}
	if !seg.LayerPinned {
		return nil
	}
	seg.LayerPinned = false
	e.recomputeTrack(seg.Track)
	return nil
}

func (e *Engine) SetTrackVisible(track Track, visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if flags, ok := e.tracks[track]; ok {
		flags.Visible = visible
	}
}

func (e *Engine) SetTrackLocked(track Track, locked bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if flags, ok := e.tracks[track]; ok {
		flags.Locked = locked
	}
}

func (e *Engine) TrackState(track Track) TrackFlags {
	e.mu.Lock()
	defer e.mu.Unlock()
	if flags, ok := e.tracks[track]; ok {
		return *flags
	}
	return TrackFlags{}
}

// FindSegment resolves a segment structurally by time (within 50ms) and,
// when text is non-empty, exact trimmed text. Best-effort repair operation
// for foreign data without ids; the first match wins.
func (e *Engine) FindSegment(
	start, end time.Duration,
	text string,
) (Segment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seg, ok := e.store.findByTimeAndText(start, end, text)
	if !ok {
		return Segment{}, false
	}
	return *seg, true
}

// Segment returns a copy of one segment.
func (e *Engine) Segment(id int) (Segment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seg, ok := e.store.get(id)
	if !ok {
		return Segment{}, fmt.Errorf("segment %d not found", id)
	}
	return *seg, nil
}

// Segments returns copies of all segments in store order.
func (e *Engine) Segments() []Segment {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Segment, 0, len(e.store.all()))
	for _, seg := range e.store.all() {
		out = append(out, *seg)
	}
	return out
}

// TrackSegments returns copies of one track's segments in time order.
func (e *Engine) TrackSegments(track Track) []Segment {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Segment
	for _, seg := range e.store.byTrack(track) {
		out = append(out, *seg)
	}
	return out
}

// OverflowSegments lists the segment ids that were placed through the
// capacity-overflow path on the last layer computation of a track.
func (e *Engine) OverflowSegments(track Track) []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]int(nil), e.overflow[track]...)
}

func (e *Engine) LayerCap() int {
	return e.layerCap
}

// recomputeTrack reruns the layer allocator for one track and writes the
// assignment back into the stored segments. Callers hold the mutex.
func (e *Engine) recomputeTrack(track Track) {
	segments := e.store.byTrack(track)
	layers, overflow := ComputeLayers(segments, e.layerCap)
	for _, seg := range segments {
		if layer, ok := layers[seg.ID]; ok {
			seg.Layer = layer
		}
	}
	if len(overflow) == 0 {
		delete(e.overflow, track)
	} else {
		e.overflow[track] = overflow
	}
}
