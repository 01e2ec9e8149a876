package layout

import "github.com/forPelevin/reframe/internal/types"

// DefaultCoalesceRatio is the per-axis position delta, normalized by source
// dimensions, below which two adjacent crops count as the same shot.
const DefaultCoalesceRatio = 0.04

// Coalesce merges adjacent crop segments whose geometry differs by less than
// ratio of the source dimensions on both axes. A merge averages coordinates,
// keeps the first segment's speakers and start, and absorbs the second's end
// time. Runs to a fixed point, so no mergeable adjacent pair survives.
func Coalesce(segments []types.CropSegment, srcWidth, srcHeight int, ratio float64) []types.CropSegment {
	out := make([]types.CropSegment, len(segments))
	for i := range segments {
		out[i] = segments[i]
		out[i].SubCrops = append([]types.SubCrop(nil), segments[i].SubCrops...)
	}

	idx := 0
	for idx < len(out)-1 {
		cur := &out[idx]
		next := out[idx+1]
		if !similar(*cur, next, srcWidth, srcHeight, ratio) {
			idx++
			continue
		}
		switch cur.Type {
		case types.CropSingle:
			cur.X = (cur.X + next.X) / 2
			cur.Y = (cur.Y + next.Y) / 2
		case types.CropSplit:
			for i := range cur.SubCrops {
				cur.SubCrops[i].X = (cur.SubCrops[i].X + next.SubCrops[i].X) / 2
				cur.SubCrops[i].Y = (cur.SubCrops[i].Y + next.SubCrops[i].Y) / 2
			}
		}
		cur.End = next.End
		out = append(out[:idx+1], out[idx+2:]...)
	}
	return out
}

func similar(a, b types.CropSegment, srcWidth, srcHeight int, ratio float64) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case types.CropSingle:
		return withinRatio(a.X, b.X, srcWidth, ratio) && withinRatio(a.Y, b.Y, srcHeight, ratio)
	case types.CropSplit:
		if len(a.SubCrops) != len(b.SubCrops) {
			return false
		}
		for i := range a.SubCrops {
			if !withinRatio(a.SubCrops[i].X, b.SubCrops[i].X, srcWidth, ratio) ||
				!withinRatio(a.SubCrops[i].Y, b.SubCrops[i].Y, srcHeight, ratio) {
				return false
			}
		}
		return true
	}
	return false
}

func withinRatio(a, b, span int, ratio float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(span) < ratio
}
