package geometry

// DefaultOverlapThreshold is the IoU above which two regions of interest are
// considered the same subject and unioned.
const DefaultOverlapThreshold = 0.5

// MergeROIs collapses overlapping rectangles into unions. It pops regions in
// input order; each popped region repeatedly absorbs every remaining region
// whose IoU with the accumulated rectangle exceeds threshold, rescanning
// until a full pass absorbs nothing, so the result has no pair left that
// could still merge. Output order follows input order of the seeds.
func MergeROIs(rois []Rect, threshold float64) []Rect {
	pending := make([]Rect, len(rois))
	copy(pending, rois)

	var merged []Rect
	for len(pending) > 0 {
		roi := pending[0]
		pending = pending[1:]

		for {
			absorbed := false
			rest := pending[:0]
			for _, other := range pending {
				if IoU(roi, other) > threshold {
					roi = Union(roi, other)
					absorbed = true
				} else {
					rest = append(rest, other)
				}
			}
			pending = rest
			if !absorbed {
				break
			}
		}
		merged = append(merged, roi)
	}
	return merged
}
