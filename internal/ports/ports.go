package ports

import (
	"context"
	"image"

	"github.com/forPelevin/reframe/internal/domain/geometry"
	"github.com/forPelevin/reframe/internal/types"
)

// VideoSource probes source metadata and extracts frames at requested
// timestamps, one frame per timestamp in the same order.
type VideoSource interface {
	Probe(ctx context.Context, path string) (types.VideoInfo, error)
	ExtractFrames(ctx context.Context, path string, times []float64) ([]image.Image, error)
}

// FaceDetector returns zero or more face bounding boxes per frame, in the
// pixel coordinates of the frames passed. An empty inner slice means no face
// in that frame; that is data, not an error.
type FaceDetector interface {
	Detect(ctx context.Context, frames []image.Image) ([][]geometry.Rect, error)
}

// LandmarkExtractor returns normalized [0,1] face-mesh landmark points for a
// face-cropped image, or ok=false when no mesh was found.
type LandmarkExtractor interface {
	Landmarks(ctx context.Context, face image.Image) (points []geometry.Point, ok bool, err error)
}

// MemoryProbe reports available working-set bytes for the two memory pools
// the batch sizer budgets against.
type MemoryProbe interface {
	FreeGeneral() uint64
	// FreeAccelerated reports the accelerated-detection pool; ok=false means
	// no such pool exists and detection shares general memory. Probing may
	// shell out, so it takes the pipeline context.
	FreeAccelerated(ctx context.Context) (uint64, bool)
}
