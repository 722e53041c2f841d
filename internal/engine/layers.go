package engine

import (
	"sort"
	"time"
)

// DefaultLayerCap is the number of vertical slots a track renders before
// overlapping segments start sharing a layer.
const DefaultLayerCap = 3

// ComputeLayers assigns a display layer to every segment of one track so
// that time-overlapping segments land on different layers, up to layerCap.
//
// The pass walks segments sorted by start time (ties by id). Pinned
// segments keep their layer. Otherwise the first layer whose committed end
// time is at or before the segment's start is reused; a new layer opens
// while fewer than layerCap are in use. At capacity the layer with the
// earliest committed end time is reused (lowest index on tie), which is the
// one path that may leave two segments of a layer overlapping. Those
// segment ids are reported in overflow so callers can render a
// "more than N overlapping" indicator.
func ComputeLayers(
	segments []*Segment,
	layerCap int,
) (layers map[int]int, overflow []int) {
	if layerCap <= 0 {
		layerCap = DefaultLayerCap
	}

	sorted := make([]*Segment, len(segments))
	copy(sorted, segments)
	sortSegments(sorted)

	layers = make(map[int]int, len(sorted))
	var layerEnd []time.Duration

	commit := func(layer int, end time.Duration) {
		for len(layerEnd) <= layer {
			layerEnd = append(layerEnd, 0)
		}
		if end > layerEnd[layer] {
			layerEnd[layer] = end
		}
	}

	for _, seg := range sorted {
		if seg.LayerPinned {
			layer := seg.Layer
			if layer < 0 {
				layer = 0
			}
			if layer >= layerCap {
				layer = layerCap - 1
			}
			layers[seg.ID] = layer
			commit(layer, seg.End)
			continue
		}

		assigned := -1
		for i := range layerEnd {
			if layerEnd[i] <= seg.Start {
				assigned = i
				break
			}
		}

		if assigned < 0 && len(layerEnd) < layerCap {
			assigned = len(layerEnd)
		}

		if assigned < 0 {
			// capacity overflow: reuse the earliest-ending layer,
			// lowest index on tie
			assigned = 0
			for i := 1; i < len(layerEnd); i++ {
				if layerEnd[i] < layerEnd[assigned] {
					assigned = i
				}
			}
			overflow = append(overflow, seg.ID)
		}

		layers[seg.ID] = assigned
		commit(assigned, seg.End)
	}

	return layers, overflow
}

func sortSegments(segments []*Segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		if segments[i].Start != segments[j].Start {
			return segments[i].Start < segments[j].Start
		}
		return segments[i].ID < segments[j].ID
	})
}
