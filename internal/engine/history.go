package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// per-segment record of text edits. Created on the first mutation that
// changes the text, never deleted, only updated.
type HistoryEntry struct {
	SegmentID    int       `json:"segmentId"`
	OriginalText string    `json:"originalText"`
	UpdatedText  string    `json:"updatedText"`
	Source       string    `json:"source"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Reverted     bool      `json:"reverted"`

	// append-only log of superseded updated texts
	Changes []string `json:"changes,omitempty"`
}

// one externally supplied text replacement, e.g. an AI rewrite of a
// description line. SegmentID targets explicitly; otherwise a time match
// is attempted when End is set; otherwise the next unconsumed description
// segment is taken.
type Replacement struct {
	SegmentID    int
	Start        time.Duration
	End          time.Duration
	NewText      string
	TargetLength int // max length in runes, 0 = unlimited
}

// a replacement that actually landed on a segment
type AppliedReplacement struct {
	SegmentID int
	OldText   string
	NewText   string
}

// RecordEdit replaces a segment's text and tracks the change in its
// history entry. The first edit captures the pre-mutation text as the
// immutable original. Setting the identical text is a no-op.
func (e *Engine) RecordEdit(id int, newText, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	seg, ok := e.store.get(id)
	if !ok {
		return fmt.Errorf("segment %d not found", id)
	}
	e.recordEditLocked(seg, newText, source)
	return nil
}

func (e *Engine) recordEditLocked(seg *Segment, newText, source string) {
	if seg.Text == newText {
		return
	}

	entry, ok := e.history[seg.ID]
	if !ok {
		entry = &HistoryEntry{
			SegmentID:    seg.ID,
			OriginalText: seg.Text,
		}
		e.history[seg.ID] = entry
	} else {
		entry.Changes = append(entry.Changes, entry.UpdatedText)
	}

	entry.UpdatedText = newText
	entry.Source = source
	entry.UpdatedAt = time.Now().UTC()
	entry.Reverted = strings.TrimSpace(entry.OriginalText) ==
		strings.TrimSpace(newText)

	seg.Text = newText
}

// ApplyReplacements resolves and applies a batch of replacements, and
// returns only the entries that actually landed so callers can detect
// silent skips. Texts are truncated to TargetLength runes and trimmed;
// entries that end up empty, or that resolve to no segment, are skipped.
func (e *Engine) ApplyReplacements(
	replacements []Replacement,
	source string,
) []AppliedReplacement {
	e.mu.Lock()
	defer e.mu.Unlock()

	consumed := make(map[int]bool)
	var applied []AppliedReplacement

	for _, rep := range replacements {
		seg := e.resolveReplacement(rep, consumed)
		if seg == nil {
			continue
		}
		consumed[seg.ID] = true

		text := rep.NewText
		if rep.TargetLength > 0 {
			runes := []rune(text)
			if len(runes) > rep.TargetLength {
				text = string(runes[:rep.TargetLength])
			}
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		old := seg.Text
		e.recordEditLocked(seg, text, source)
		applied = append(applied, AppliedReplacement{
			SegmentID: seg.ID,
			OldText:   old,
			NewText:   text,
		})
	}

	return applied
}

func (e *Engine) resolveReplacement(
	rep Replacement,
	consumed map[int]bool,
) *Segment {
	if rep.SegmentID != 0 {
		if seg, ok := e.store.get(rep.SegmentID); ok {
			return seg
		}
	}
	if rep.End > 0 {
		if seg, ok := e.store.findByTimeAndText(
			rep.Start,
			rep.End,
			"",
		); ok {
			return seg
		}
	}
	// fall back to the next description segment not yet taken in this batch
	for _, seg := range e.store.byTrack(TrackDescription) {
		if !consumed[seg.ID] {
			return seg
		}
	}
	return nil
}

// Revert restores a segment's original text. Reverting twice leaves the
// same final state.
func (e *Engine) Revert(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.history[id]
	if !ok {
		return fmt.Errorf("%w: segment %d", ErrNoHistory, id)
	}

	seg, segOK := e.store.get(id)
	if entry.UpdatedText != entry.OriginalText {
		entry.Changes = append(entry.Changes, entry.UpdatedText)
		entry.UpdatedText = entry.OriginalText
		entry.UpdatedAt = time.Now().UTC()
	}
	entry.Reverted = true
	if segOK {
		seg.Text = entry.OriginalText
	}
	return nil
}

// History returns a copy of a segment's history entry, if any.
func (e *Engine) History(id int) (HistoryEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.history[id]
	if !ok {
		return HistoryEntry{}, false
	}
	return copyHistoryEntry(entry), true
}

// Histories returns copies of every history entry, ordered by segment id.
func (e *Engine) Histories() []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.historiesLocked()
}

func (e *Engine) historiesLocked() []HistoryEntry {
	ids := make([]int, 0, len(e.history))
	for id := range e.history {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]HistoryEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyHistoryEntry(e.history[id]))
	}
	return out
}

func copyHistoryEntry(entry *HistoryEntry) HistoryEntry {
	cp := *entry
	cp.Changes = append([]string(nil), entry.Changes...)
	return cp
}
