// Package faces groups face detections into per-person clusters and derives
// the landmark-based mouth-openness measure used to pick the active speaker.
package faces

import (
	"math"
	"math/rand"

	"github.com/forPelevin/reframe/internal/domain/geometry"
)

// ClusterBoxes partitions bounding boxes into k groups by spatial proximity
// of their corner coordinates and returns a cluster label per box. Boxes of
// the same physical subject across frames land close together, so plain
// k-means on (x1,y1,x2,y2) vectors separates subjects reliably. The seed is
// fixed: repeated calls on the same input group identically.
func ClusterBoxes(boxes []geometry.Rect, k int) []int {
	labels := make([]int, len(boxes))
	if k <= 1 || len(boxes) <= 1 {
		return labels
	}
	if k > len(boxes) {
		k = len(boxes)
	}

	points := make([][4]float64, len(boxes))
	for i, b := range boxes {
		points[i] = [4]float64{float64(b.X), float64(b.Y), float64(b.X + b.Width), float64(b.Y + b.Height)}
	}

	rng := rand.New(rand.NewSource(0))
	centers := seedCenters(points, k, rng)

	for iter := 0; iter < 50; iter++ {
		moved := false
		for i, p := range points {
			best := nearestCenter(p, centers)
			if labels[i] != best {
				labels[i] = best
				moved = true
			}
		}
		for c := range centers {
			var sum [4]float64
			n := 0
			for i, p := range points {
				if labels[i] != c {
					continue
				}
				for d := 0; d < 4; d++ {
					sum[d] += p[d]
				}
				n++
			}
			if n == 0 {
				continue
			}
			for d := 0; d < 4; d++ {
				centers[c][d] = sum[d] / float64(n)
			}
		}
		if !moved && iter > 0 {
			break
		}
	}
	return labels
}

// seedCenters picks initial centers k-means++ style: the first at random,
// each next with probability proportional to squared distance from the
// nearest chosen center.
func seedCenters(points [][4]float64, k int, rng *rand.Rand) [][4]float64 {
	centers := make([][4]float64, 0, k)
	centers = append(centers, points[rng.Intn(len(points))])

	for len(centers) < k {
		dists := make([]float64, len(points))
		var total float64
		for i, p := range points {
			d := math.Inf(1)
			for _, c := range centers {
				if dd := sqDist(p, c); dd < d {
					d = dd
				}
			}
			dists[i] = d
			total += d
		}
		if total == 0 {
			// all remaining points coincide with a center
			centers = append(centers, points[rng.Intn(len(points))])
			continue
		}
		target := rng.Float64() * total
		var acc float64
		pick := len(points) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				pick = i
				break
			}
		}
		centers = append(centers, points[pick])
	}
	return centers
}

func nearestCenter(p [4]float64, centers [][4]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, center := range centers {
		if d := sqDist(p, center); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func sqDist(a, b [4]float64) float64 {
	var s float64
	for d := 0; d < 4; d++ {
		diff := a[d] - b[d]
		s += diff * diff
	}
	return s
}
