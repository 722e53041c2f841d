package engine

import (
	"strings"
	"time"
)

// one composed caption line for display
type DisplayLine struct {
	Track Track
	Text  string
}

// default track order for composed captions
var DefaultTrackOrder = []Track{TrackMain, TrackDescription, TrackTranslation}

// ActiveSegmentsAt returns copies of every segment showing at time t,
// bounds inclusive, in store order. Pure read; safe to call at arbitrary
// frequency, e.g. from a 100ms playback tick.
func (e *Engine) ActiveSegmentsAt(t time.Duration) []Segment {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Segment
	for _, seg := range e.store.all() {
		if seg.ActiveAt(t) {
			out = append(out, *seg)
		}
	}
	return out
}

// ComposeDisplayLines emits at most one caption line per visible track in
// trackOrder: the first active segment with non-empty trimmed text. Hidden
// tracks and tracks with nothing active emit no line; there is no
// cross-track fallback. A nil trackOrder uses the default order.
func (e *Engine) ComposeDisplayLines(
	t time.Duration,
	trackOrder []Track,
) []DisplayLine {
	e.mu.Lock()
	defer e.mu.Unlock()

	if trackOrder == nil {
		trackOrder = DefaultTrackOrder
	}

	var lines []DisplayLine
	for _, track := range trackOrder {
		flags, ok := e.tracks[track]
		if !ok || !flags.Visible {
			continue
		}
		for _, seg := range e.store.byTrack(track) {
			if !seg.ActiveAt(t) {
				continue
			}
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			lines = append(lines, DisplayLine{Track: track, Text: text})
			break
		}
	}
	return lines
}

// ComposeSingleLine is the degraded single-line mode used when no
// per-track overlay exists: the first active segment across all tracks,
// regardless of track.
func (e *Engine) ComposeSingleLine(t time.Duration) (DisplayLine, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, seg := range e.store.all() {
		if !seg.ActiveAt(t) {
			continue
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		return DisplayLine{Track: seg.Track, Text: text}, true
	}
	return DisplayLine{}, false
}
