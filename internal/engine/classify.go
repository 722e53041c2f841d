package engine

import (
	"strings"
	"unicode"
)

// assigns segments to tracks using explicit overrides, a caller supplied
// speaker mapping, and a text shape heuristic, in that order
type classifier struct {
	speakerTrack map[string]Track
}

func newClassifier() *classifier {
	return &classifier{
		speakerTrack: make(map[string]Track),
	}
}

// replaces the speaker-to-track mapping. Keys are track names, values the
// speaker labels routed to that track.
func (c *classifier) setSpeakerMap(mapping map[Track][]string) {
	c.speakerTrack = make(map[string]Track)
	for track, speakers := range mapping {
		if !ValidTrack(track) {
			continue
		}
		for _, speaker := range speakers {
			key := normalizeSpeaker(speaker)
			if key != "" {
				c.speakerTrack[key] = track
			}
		}
	}
}

func (c *classifier) classify(seg Segment) Track {
	// an explicit assignment always wins
	if seg.Track != "" && seg.Track != TrackUnassigned && ValidTrack(seg.Track) {
		return seg.Track
	}

	if seg.Speaker != "" {
		if track, ok := c.speakerTrack[normalizeSpeaker(seg.Speaker)]; ok {
			return track
		}
	}

	text := strings.TrimSpace(seg.Text)
	if text == "" {
		return TrackUnassigned
	}
	if isBracketed(text) {
		return TrackDescription
	}
	if isBasicLatin(text) {
		return TrackTranslation
	}
	return TrackMain
}

func normalizeSpeaker(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// text wrapped in brackets, e.g. [door slams], reads as a description
func isBracketed(text string) bool {
	pairs := [][2]string{
		{"[", "]"},
		{"(", ")"},
		{"【", "】"},
	}
	for _, p := range pairs {
		if strings.HasPrefix(text, p[0]) && strings.HasSuffix(text, p[1]) {
			return true
		}
	}
	return false
}

// true when every rune is basic Latin letter, digit, punctuation, or space
func isBasicLatin(text string) bool {
	for _, r := range text {
		if r > unicode.MaxASCII {
			return false
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) ||
			unicode.IsPunct(r) || unicode.IsSymbol(r) ||
			unicode.IsSpace(r) {
			continue
		}
		return false
	}
	return true
}
