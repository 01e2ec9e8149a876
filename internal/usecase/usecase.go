// Package usecase runs the reframing engine: timeline merging, face
// presence scanning, ROI extraction and layout, producing a ResizePlan.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/forPelevin/reframe/internal/domain/batching"
	"github.com/forPelevin/reframe/internal/domain/layout"
	"github.com/forPelevin/reframe/internal/domain/timeline"
	"github.com/forPelevin/reframe/internal/ports"
	"github.com/forPelevin/reframe/internal/types"
)

// ErrNoFacesInSegment reports a broken engine invariant: a segment the
// scanner marked as containing a face produced zero detections during ROI
// sampling. This is a logic bug, not a "no face in segment" outcome.
var ErrNoFacesInSegment = errors.New("segment marked as containing a face yielded no detections")

type Deps struct {
	Video     ports.VideoSource
	Faces     ports.FaceDetector
	Landmarks ports.LandmarkExtractor
	Memory    ports.MemoryProbe
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	VideoPath    string
	Segments     []types.SpeakerSegment
	SceneChanges []float64

	AspectWidth  int
	AspectHeight int

	SamplesPerSegment   int
	DetectWidth         int
	DetectBatchHint     int
	SceneMergeThreshold float64
	OverlapThreshold    float64
	CoalesceRatio       float64

	// SplitScreen reports all simultaneous faces as independent ROIs;
	// disabled, the engine picks the single most active mouth instead.
	SplitScreen bool

	Seed int64
	Logf func(format string, args ...any)
}

type Result struct {
	Plan types.ResizePlan
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	in.Logf = logf

	if err := timeline.Validate(in.Segments, in.SceneChanges); err != nil {
		return Result{}, fmt.Errorf("input timeline: %w", err)
	}

	info, err := u.d.Video.Probe(ctx, in.VideoPath)
	if err != nil {
		return Result{}, fmt.Errorf("probe video: %w", err)
	}
	if info.Width <= 0 || info.Height <= 0 || info.FrameRate <= 0 {
		return Result{}, fmt.Errorf("probe video: implausible metadata %+v", info)
	}
	logf("video: %dx%d @ %.3f fps, %.2fs", info.Width, info.Height, info.FrameRate, info.Duration)

	cropW, cropH := layout.ResizeDims(info.Width, info.Height, in.AspectWidth, in.AspectHeight)
	logf("crop size: %dx%d (target %d:%d)", cropW, cropH, in.AspectWidth, in.AspectHeight)

	segments := timeline.MergeSceneChanges(in.Segments, in.SceneChanges, in.SceneMergeThreshold)
	logf("merged %d speaker segments and %d scene changes into %d segments",
		len(in.Segments), len(in.SceneChanges), len(segments))

	if err := u.scanFirstFaces(ctx, info, segments, in); err != nil {
		return Result{}, fmt.Errorf("scan for faces: %w", err)
	}

	rng := rand.New(rand.NewSource(in.Seed))
	crops, err := u.extractCrops(ctx, info, segments, cropW, cropH, in, rng)
	if err != nil {
		return Result{}, fmt.Errorf("extract crop regions: %w", err)
	}

	before := len(crops)
	crops = layout.Coalesce(crops, info.Width, info.Height, in.CoalesceRatio)
	logf("coalesced %d near-identical segments", before-len(crops))

	return Result{Plan: types.ResizePlan{
		OriginalWidth:  info.Width,
		OriginalHeight: info.Height,
		CropWidth:      cropW,
		CropHeight:     cropH,
		Segments:       crops,
	}}, nil
}

// batchPlan sizes one extraction/detection round against current memory.
func (u Usecase) batchPlan(ctx context.Context, info types.VideoInfo, numFrames int, in Input) batching.Plan {
	freeAccel, accelOK := u.d.Memory.FreeAccelerated(ctx)
	plan := batching.Calc(batching.Input{
		FrameWidth:      info.Width,
		FrameHeight:     info.Height,
		NumFrames:       numFrames,
		DetectWidth:     in.DetectWidth,
		DetectBatchHint: in.DetectBatchHint,
		FreeGeneral:     u.d.Memory.FreeGeneral(),
		FreeAccelerated: freeAccel,
		AcceleratedOK:   accelOK,
	})
	in.Logf("using %d batches for %d frames (%.3f GiB general, %.3f GiB accelerated per batch)",
		plan.Batches, numFrames, gib(plan.GeneralPerBatch), gib(plan.AcceleratedPerBatch))
	return plan
}

func gib(b uint64) float64 { return float64(b) / (1 << 30) }
