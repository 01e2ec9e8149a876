package faces

import (
	"math"

	"github.com/forPelevin/reframe/internal/domain/geometry"
)

// Inner-lip landmark rows of the 468-point face mesh. Upper and lower rows
// are paired index-wise; their mean separation measures mouth openness.
var (
	upperLipIdx = []int{95, 88, 178, 87, 14, 317, 402, 318, 324}
	lowerLipIdx = []int{191, 80, 81, 82, 13, 312, 311, 310, 415}
)

// Mouth width endpoints (lip corners).
const (
	lipCornerRight = 308
	lipCornerLeft  = 78
)

const meshPoints = 468

// MouthAspectRatio computes mouth openness from normalized face-mesh
// landmarks scaled to the face crop's dimensions: mean inner-lip separation
// divided by mouth width. Returns false when the landmark set is incomplete
// or the mouth width degenerates to zero.
func MouthAspectRatio(landmarks []geometry.Point, faceWidth, faceHeight int) (float64, bool) {
	if len(landmarks) < meshPoints {
		return 0, false
	}

	px := func(i int) (float64, float64) {
		return landmarks[i].X * float64(faceWidth), landmarks[i].Y * float64(faceHeight)
	}

	var sep float64
	for i := range upperLipIdx {
		ux, uy := px(upperLipIdx[i])
		lx, ly := px(lowerLipIdx[i])
		sep += math.Abs(ux-lx) + math.Abs(uy-ly)
	}
	avgHeight := sep / float64(2*len(upperLipIdx))

	rx, ry := px(lipCornerRight)
	lx, ly := px(lipCornerLeft)
	width := math.Abs(rx-lx) + math.Abs(ry-ly)
	if width == 0 {
		return 0, false
	}
	return avgHeight / width, true
}
