package usecase

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand"
	"sort"

	"github.com/forPelevin/reframe/internal/domain/faces"
	"github.com/forPelevin/reframe/internal/domain/geometry"
	"github.com/forPelevin/reframe/internal/domain/layout"
	"github.com/forPelevin/reframe/internal/types"
)

// extractCrops samples frames per segment, derives regions of interest and
// converts them into crop decisions. Segments are processed in
// memory-budgeted batches, sequentially, in timeline order.
func (u Usecase) extractCrops(ctx context.Context, info types.VideoInfo, segments []types.SpeakerSegment, cropW, cropH int, in Input, rng *rand.Rand) ([]types.CropSegment, error) {
	plan := u.batchPlan(ctx, info, len(segments)*in.SamplesPerSegment, in)
	segsPerBatch := len(segments)/plan.Batches + 1

	out := make([]types.CropSegment, 0, len(segments))
	for i := 0; i < plan.Batches; i++ {
		lo := i * segsPerBatch
		if lo >= len(segments) {
			break
		}
		hi := min((i+1)*segsPerBatch, len(segments))

		crops, err := u.cropBatch(ctx, info, segments[lo:hi], cropW, cropH, in, rng)
		if err != nil {
			return nil, err
		}
		out = append(out, crops...)
	}
	return out, nil
}

func (u Usecase) cropBatch(ctx context.Context, info types.VideoInfo, segments []types.SpeakerSegment, cropW, cropH int, in Input, rng *rand.Rand) ([]types.CropSegment, error) {
	fps := info.FrameRate

	// pick sample timestamps per segment: always the first face, then random
	// distinct frame offsets across the analysis window, ascending
	times := make([]float64, 0, len(segments)*in.SamplesPerSegment)
	counts := make([]int, len(segments))
	for i, s := range segments {
		if !s.FoundFace {
			continue
		}
		analyzeEnd := s.End - (s.End-s.FirstFace)/headSkip
		framesLeft := int((analyzeEnd-s.FirstFace)*fps + 1)
		n := min(framesLeft, in.SamplesPerSegment)
		if n < 1 {
			n = 1
		}
		counts[i] = n

		times = append(times, s.FirstFace)
		for _, off := range sampleOffsets(rng, framesLeft, n-1) {
			times = append(times, s.FirstFace+float64(off)/fps)
		}
	}

	frames, err := u.d.Video.ExtractFrames(ctx, in.VideoPath, times)
	if err != nil {
		return nil, err
	}
	detections, err := u.detectFaces(ctx, frames, in.DetectWidth)
	if err != nil {
		return nil, err
	}

	out := make([]types.CropSegment, 0, len(segments))
	idx := 0
	for i, s := range segments {
		var rois []geometry.Rect
		if s.FoundFace {
			segFrames := frames[idx : idx+counts[i]]
			segDets := detections[idx : idx+counts[i]]
			idx += counts[i]

			rois, err = u.segmentROIs(ctx, segFrames, segDets, in)
			if err != nil {
				return nil, fmt.Errorf("segment [%v, %v]: %w", s.Start, s.End, err)
			}
		} else {
			// no face anywhere: keep the middle of the frame
			rois = []geometry.Rect{{
				X:      info.Width / 4,
				Y:      info.Height / 4,
				Width:  info.Width / 2,
				Height: info.Height / 2,
			}}
		}

		typ, x, y, subs := layout.Decide(rois, cropW, cropH, info.Width, info.Height)
		out = append(out, types.CropSegment{
			Speakers: s.Speakers,
			Start:    s.Start,
			End:      s.End,
			Type:     typ,
			X:        x,
			Y:        y,
			SubCrops: subs,
		})
	}
	return out, nil
}

// segmentROIs reduces a segment's sampled detections to its regions of
// interest: every distinct face when split-screen is enabled, otherwise the
// single face whose mouth moves the most.
func (u Usecase) segmentROIs(ctx context.Context, frames []image.Image, detections [][]geometry.Rect, in Input) ([]geometry.Rect, error) {
	total := 0
	for _, det := range detections {
		total += len(det)
	}
	if total == 0 {
		return nil, ErrNoFacesInSegment
	}

	if in.SplitScreen {
		boxes := make([]geometry.Rect, 0, total)
		for _, det := range detections {
			boxes = append(boxes, det...)
		}
		return geometry.MergeROIs(boxes, in.OverlapThreshold), nil
	}

	roi, err := u.activeSpeakerROI(ctx, frames, detections)
	if err != nil {
		return nil, err
	}
	return []geometry.Rect{roi}, nil
}

// activeSpeakerROI clusters all sampled boxes into per-person groups and
// returns the average box of the group with the most mouth movement. When
// landmarks never resolve or nothing moves, the most-often-seen face wins.
func (u Usecase) activeSpeakerROI(ctx context.Context, frames []image.Image, detections [][]geometry.Rect) (geometry.Rect, error) {
	k := 0
	var boxes []geometry.Rect
	var frameOf []int
	for fi, det := range detections {
		if len(det) > k {
			k = len(det)
		}
		for _, b := range det {
			boxes = append(boxes, b)
			frameOf = append(frameOf, fi)
		}
	}
	if k == 0 {
		return geometry.Rect{}, ErrNoFacesInSegment
	}
	if k == 1 {
		return geometry.Mean(boxes), nil
	}

	labels := faces.ClusterBoxes(boxes, k)
	groups := make([][]int, k)
	for bi, label := range labels {
		groups[label] = append(groups[label], bi)
	}

	var best geometry.Rect
	maxMovement := 0.0
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		movement, err := u.mouthMovement(ctx, frames, boxes, frameOf, group)
		if err != nil {
			return geometry.Rect{}, err
		}
		if movement > maxMovement {
			maxMovement = movement
			best = meanOf(boxes, group)
		}
	}
	if maxMovement > 0 {
		return best, nil
	}

	// fall back to the cluster seen in the most frames
	largest := 0
	for gi := 1; gi < len(groups); gi++ {
		if len(groups[gi]) > len(groups[largest]) {
			largest = gi
		}
	}
	return meanOf(boxes, groups[largest]), nil
}

// mouthMovement sums absolute frame-to-frame change of the mouth aspect
// ratio across one cluster's members, in chronological order. Members
// without a usable landmark mesh are skipped; that is data, not a fault.
func (u Usecase) mouthMovement(ctx context.Context, frames []image.Image, boxes []geometry.Rect, frameOf []int, group []int) (float64, error) {
	var movement, prev float64
	hasPrev := false
	for _, bi := range group {
		face := cropFace(frames[frameOf[bi]], boxes[bi])
		fb := face.Bounds()
		if fb.Empty() {
			continue
		}
		points, ok, err := u.d.Landmarks.Landmarks(ctx, face)
		if err != nil {
			return 0, fmt.Errorf("extract landmarks: %w", err)
		}
		if !ok {
			continue
		}
		mar, ok := faces.MouthAspectRatio(points, fb.Dx(), fb.Dy())
		if !ok {
			continue
		}
		if !hasPrev {
			prev = mar
			hasPrev = true
			continue
		}
		movement += math.Abs(mar - prev)
		prev = mar
	}
	return movement, nil
}

func meanOf(boxes []geometry.Rect, idxs []int) geometry.Rect {
	group := make([]geometry.Rect, 0, len(idxs))
	for _, i := range idxs {
		group = append(group, boxes[i])
	}
	return geometry.Mean(group)
}

// sampleOffsets draws n distinct frame offsets from [1, framesLeft),
// ascending.
func sampleOffsets(rng *rand.Rand, framesLeft, n int) []int {
	if n <= 0 || framesLeft <= 1 {
		return nil
	}
	if n > framesLeft-1 {
		n = framesLeft - 1
	}
	perm := rng.Perm(framesLeft - 1)[:n]
	for i := range perm {
		perm[i]++
	}
	sort.Ints(perm)
	return perm
}
