package usecase

import (
	"context"
	"math"

	"github.com/forPelevin/reframe/internal/types"
)

const (
	// samplePeriod is the spacing between consecutive scan samples.
	samplePeriod = 1.0
	// scanEndSlack: a cursor within this of the segment end gives up.
	scanEndSlack = 0.25
	// headSkip divides the segment length to skip intros and fade-ins.
	headSkip = 8
)

// scanFirstFaces finds, per segment, the earliest sampled timestamp with a
// detectable face. Each round samples an expanding window per unresolved
// segment; the window grows fast between rounds so long faceless stretches
// are skipped over in few detector calls. Segments are annotated in place
// with FoundFace and FirstFace.
func (u Usecase) scanFirstFaces(ctx context.Context, info types.VideoInfo, segments []types.SpeakerSegment, in Input) error {
	for i := range segments {
		s := &segments[i]
		s.FirstFace = s.Start + (s.End-s.Start)/headSkip
		s.FoundFace = false
	}

	analyzed := make([]bool, len(segments))
	remaining := len(segments)
	batchPeriod := 1.0

	for remaining > 0 {
		times := make([]float64, 0, len(segments))
		counts := make([]int, len(segments))
		for i := range segments {
			if analyzed[i] {
				continue
			}
			left := segments[i].End - segments[i].FirstFace
			n := int(math.Min(batchPeriod, left) / samplePeriod)
			if n < 1 {
				n = 1
			}
			counts[i] = n
			for k := 0; k < n; k++ {
				times = append(times, segments[i].FirstFace+float64(k)*samplePeriod)
			}
		}

		detections, err := u.detectRound(ctx, info, times, in)
		if err != nil {
			return err
		}

		idx := 0
		for i := range segments {
			if analyzed[i] {
				continue
			}
			s := &segments[i]
			for k := 0; k < counts[i]; k++ {
				if len(detections[idx+k]) > 0 {
					s.FoundFace = true
					break
				}
				s.FirstFace += samplePeriod
			}
			idx += counts[i]

			if s.FoundFace || s.FirstFace >= s.End-scanEndSlack {
				analyzed[i] = true
				remaining--
			}
		}

		batchPeriod = (batchPeriod + 3) * 2
	}

	found := 0
	for i := range segments {
		if segments[i].FoundFace {
			found++
		}
	}
	in.Logf("face scan: %d of %d segments contain a face", found, len(segments))
	return nil
}
