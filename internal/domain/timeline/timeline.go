// Package timeline reconciles speaker-diarization segments with scene-change
// timestamps into a single contiguous segment list.
package timeline

import (
	"fmt"

	"github.com/forPelevin/reframe/internal/types"
)

// DefaultSceneMergeThreshold is how close (seconds) a scene change must be to
// a segment boundary to snap the boundary instead of splitting the segment.
const DefaultSceneMergeThreshold = 0.25

// Validate rejects malformed diarization or scene-change input before any
// processing happens. Segments must be non-empty, positive-duration and
// contiguous; scene changes must be strictly increasing and fall inside
// (first.Start, last.End].
func Validate(segments []types.SpeakerSegment, sceneChanges []float64) error {
	if len(segments) == 0 {
		return fmt.Errorf("no speaker segments")
	}
	for i, s := range segments {
		if s.End <= s.Start {
			return fmt.Errorf("segment %d: non-positive duration [%v, %v]", i, s.Start, s.End)
		}
		if i > 0 && segments[i-1].End != s.Start {
			return fmt.Errorf("segment %d: starts at %v, previous ends at %v", i, s.Start, segments[i-1].End)
		}
	}
	first := segments[0].Start
	last := segments[len(segments)-1].End
	for i, sc := range sceneChanges {
		if i > 0 && sc <= sceneChanges[i-1] {
			return fmt.Errorf("scene change %d: %v not after %v", i, sc, sceneChanges[i-1])
		}
		if sc <= first || sc > last {
			return fmt.Errorf("scene change %d: %v outside segment coverage (%v, %v]", i, sc, first, last)
		}
	}
	return nil
}

// MergeSceneChanges folds scene-change timestamps into the speaker segments.
// A scene change near a boundary (within threshold) snaps the boundary to it;
// one in the interior splits the owning segment in two, both halves keeping
// the speaker set. The input slice is not modified; the result is contiguous.
// A cut within threshold of the final end pulls the overall end back to it,
// and cuts at or past the (possibly pulled-back) final end are no-ops.
func MergeSceneChanges(segments []types.SpeakerSegment, sceneChanges []float64, threshold float64) []types.SpeakerSegment {
	merged := make([]types.SpeakerSegment, len(segments))
	copy(merged, segments)

	idx := 0
	for _, sc := range sceneChanges {
		for idx < len(merged)-1 && sc > merged[idx].End {
			idx++
		}
		seg := &merged[idx]

		switch {
		// at or past the final boundary (an earlier cut may have pulled it
		// back): nothing left to cut
		case sc >= seg.End:
		// close to the segment end: pull the boundary back to the cut
		case seg.End-sc < threshold:
			seg.End = sc
			if idx < len(merged)-1 {
				merged[idx+1].Start = sc
			}
		// close to the segment start: push the boundary up to the cut
		case sc-seg.Start > 0 && sc-seg.Start < threshold:
			seg.Start = sc
			if idx > 0 {
				merged[idx-1].End = sc
			}
		// interior: split the segment at the cut
		default:
			tail := types.SpeakerSegment{
				Speakers: append([]int(nil), seg.Speakers...),
				Start:    sc,
				End:      seg.End,
			}
			seg.End = sc
			merged = append(merged, types.SpeakerSegment{})
			copy(merged[idx+2:], merged[idx+1:])
			merged[idx+1] = tail
		}
	}
	return merged
}
