package engine

import (
	"errors"
	"time"
)

// named lane holding a subset of segments
type Track string

const (
	TrackMain        Track = "main"
	TrackTranslation Track = "translation"
	TrackDescription Track = "description"
	TrackUnassigned  Track = "unassigned"
)

// content lanes in default display order
var ContentTracks = []Track{TrackMain, TrackDescription, TrackTranslation}

func ValidTrack(t Track) bool {
	switch t {
	case TrackMain, TrackTranslation, TrackDescription, TrackUnassigned:
		return true
	}
	return false
}

// UI flags for one track; they gate synchronizer output and drag
// eligibility but never affect stored segment data
type TrackFlags struct {
	Visible bool `json:"visible"`
	Locked  bool `json:"locked"`
}

// single timed text unit with stable identity
type Segment struct {
	ID      int
	Start   time.Duration
	End     time.Duration
	Text    string
	Speaker string
	Track   Track
	Layer   int

	// layer chosen by the user; the allocator honors it until cleared
	LayerPinned bool
}

func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// reports whether the segment is showing at time t (inclusive bounds)
func (s Segment) ActiveAt(t time.Duration) bool {
	return s.Start <= t && t <= s.End
}

// reports whether the two time ranges intersect
func (s Segment) Overlaps(o Segment) bool {
	return s.Start < o.End && o.Start < s.End
}

var (
	ErrLockedTrack  = errors.New("track is locked")
	ErrNoHistory    = errors.New("no edit history for segment")
	ErrSchema       = errors.New("invalid snapshot schema")
	ErrInvalidRange = errors.New("invalid time range")
)
