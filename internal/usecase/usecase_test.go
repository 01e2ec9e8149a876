package usecase

import (
	"context"
	"image"
	"testing"

	"github.com/forPelevin/reframe/internal/domain/geometry"
	"github.com/forPelevin/reframe/internal/types"
)

// fakeVideo hands out uniform frames and remembers the timestamps of the
// last extraction so the detector fake can answer per-timestamp.
type fakeVideo struct {
	info      types.VideoInfo
	frameSize int
	lastTimes []float64
	extracted int
}

func (f *fakeVideo) Probe(context.Context, string) (types.VideoInfo, error) {
	return f.info, nil
}

func (f *fakeVideo) ExtractFrames(_ context.Context, _ string, times []float64) ([]image.Image, error) {
	f.lastTimes = append([]float64(nil), times...)
	f.extracted += len(times)
	size := f.frameSize
	if size == 0 {
		size = 2
	}
	frames := make([]image.Image, len(times))
	for i := range frames {
		frames[i] = image.NewRGBA(image.Rect(0, 0, size, size))
	}
	return frames, nil
}

// fakeDetector maps the timestamp of each frame (via the shared fakeVideo)
// to bounding boxes.
type fakeDetector struct {
	video *fakeVideo
	boxes func(t float64) []geometry.Rect
	calls int
}

func (f *fakeDetector) Detect(_ context.Context, frames []image.Image) ([][]geometry.Rect, error) {
	f.calls++
	out := make([][]geometry.Rect, len(frames))
	for i := range frames {
		out[i] = f.boxes(f.video.lastTimes[i])
	}
	return out, nil
}

type fakeLandmarks struct {
	// meshFor returns a mesh per face-crop width and per-width call index
	meshFor func(faceWidth, call int) ([]geometry.Point, bool)
	seen    map[int]int
}

func (f *fakeLandmarks) Landmarks(_ context.Context, face image.Image) ([]geometry.Point, bool, error) {
	if f.meshFor == nil {
		return nil, false, nil
	}
	if f.seen == nil {
		f.seen = map[int]int{}
	}
	w := face.Bounds().Dx()
	call := f.seen[w]
	f.seen[w]++
	points, ok := f.meshFor(w, call)
	return points, ok, nil
}

type fakeMemory struct {
	general uint64
	accel   uint64
	accelOK bool
}

func (f fakeMemory) FreeGeneral() uint64 { return f.general }
func (f fakeMemory) FreeAccelerated(context.Context) (uint64, bool) {
	return f.accel, f.accelOK
}

func plentyOfMemory() fakeMemory { return fakeMemory{general: 1 << 40} }

func baseInput(video string, segments []types.SpeakerSegment) Input {
	return Input{
		VideoPath:           video,
		Segments:            segments,
		AspectWidth:         9,
		AspectHeight:        16,
		SamplesPerSegment:   13,
		DetectWidth:         960,
		DetectBatchHint:     8,
		SceneMergeThreshold: 0.25,
		OverlapThreshold:    0.5,
		CoalesceRatio:       0.04,
		SplitScreen:         true,
	}
}

func TestRun_EndToEnd_SingleAndSplit(t *testing.T) {
	video := &fakeVideo{info: types.VideoInfo{Width: 1920, Height: 1080, FrameRate: 30, Duration: 20}}
	soloBox := geometry.Rect{X: 600, Y: 400, Width: 100, Height: 100}
	leftBox := geometry.Rect{X: 200, Y: 100, Width: 100, Height: 100}
	rightBox := geometry.Rect{X: 1500, Y: 800, Width: 100, Height: 100}
	det := &fakeDetector{video: video, boxes: func(ts float64) []geometry.Rect {
		if ts < 10 {
			return []geometry.Rect{soloBox}
		}
		return []geometry.Rect{leftBox, rightBox}
	}}

	uc := New(Deps{Video: video, Faces: det, Landmarks: &fakeLandmarks{}, Memory: plentyOfMemory()})
	in := baseInput("in.mp4", []types.SpeakerSegment{
		{Speakers: []int{0}, Start: 0, End: 10},
		{Speakers: []int{0, 1}, Start: 10, End: 20},
	})

	res, err := uc.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	plan := res.Plan

	if plan.CropWidth != 607 || plan.CropHeight != 1080 {
		t.Fatalf("crop size = %dx%d, want 607x1080", plan.CropWidth, plan.CropHeight)
	}
	if len(plan.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(plan.Segments), plan.Segments)
	}
	if plan.Segments[0].Start != 0 || plan.Segments[0].End != plan.Segments[1].Start || plan.Segments[1].End != 20 {
		t.Fatalf("segments do not partition the duration: %+v", plan.Segments)
	}

	solo := plan.Segments[0]
	if solo.Type != types.CropSingle {
		t.Fatalf("single-speaker segment type = %v", solo.Type)
	}
	// solo ROI center (650,450): x = 650-303, y clamps to 0
	if solo.X != 347 || solo.Y != 0 {
		t.Fatalf("solo crop = (%d,%d), want (347,0)", solo.X, solo.Y)
	}

	duo := plan.Segments[1]
	if duo.Type != types.CropSplit || len(duo.SubCrops) != 2 {
		t.Fatalf("two-speaker segment = %v with %d sub-crops", duo.Type, len(duo.SubCrops))
	}
	if duo.SubCrops[0].TargetY != 0 || duo.SubCrops[1].TargetY != 540 {
		t.Fatalf("sub-crops not stacked vertically: %+v", duo.SubCrops)
	}
	for i, s := range duo.SubCrops {
		if s.Width != 607 || s.Height != 540 {
			t.Fatalf("sub-crop %d size = %dx%d, want 607x540", i, s.Width, s.Height)
		}
	}
}

func TestRun_NoFaceSegmentGetsCenteredROI(t *testing.T) {
	video := &fakeVideo{info: types.VideoInfo{Width: 1920, Height: 1080, FrameRate: 30, Duration: 10}}
	det := &fakeDetector{video: video, boxes: func(float64) []geometry.Rect { return nil }}

	uc := New(Deps{Video: video, Faces: det, Landmarks: &fakeLandmarks{}, Memory: plentyOfMemory()})
	res, err := uc.Run(context.Background(), baseInput("in.mp4", []types.SpeakerSegment{
		{Speakers: []int{0}, Start: 0, End: 10},
	}))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Plan.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(res.Plan.Segments))
	}
	got := res.Plan.Segments[0]
	// default ROI is the centered half-frame: center (960,540)
	if got.Type != types.CropSingle || got.X != 657 || got.Y != 0 {
		t.Fatalf("fallback crop = %v (%d,%d), want single (657,0)", got.Type, got.X, got.Y)
	}
}

func TestScanFirstFaces_LateFace(t *testing.T) {
	video := &fakeVideo{info: types.VideoInfo{Width: 1920, Height: 1080, FrameRate: 30, Duration: 10}}
	det := &fakeDetector{video: video, boxes: func(ts float64) []geometry.Rect {
		if ts >= 9.2 {
			return []geometry.Rect{{X: 100, Y: 100, Width: 50, Height: 50}}
		}
		return nil
	}}
	uc := New(Deps{Video: video, Faces: det, Landmarks: &fakeLandmarks{}, Memory: plentyOfMemory()})

	segments := []types.SpeakerSegment{{Speakers: []int{0}, Start: 0, End: 10}}
	in := baseInput("in.mp4", segments)
	in.Logf = func(string, ...any) {}
	if err := uc.scanFirstFaces(context.Background(), video.info, segments, in); err != nil {
		t.Fatalf("scan: %v", err)
	}
	s := segments[0]
	if !s.FoundFace {
		t.Fatalf("expected face to be found late in the segment")
	}
	if s.FirstFace < 9.2 || s.FirstFace > s.End-scanEndSlack {
		t.Fatalf("first face time = %v, want within [9.2, %v)", s.FirstFace, s.End-scanEndSlack)
	}
}

func TestScanFirstFaces_NeverReportsPastEndSlack(t *testing.T) {
	video := &fakeVideo{info: types.VideoInfo{Width: 1920, Height: 1080, FrameRate: 30, Duration: 10}}
	// face only visible inside the final quarter second
	det := &fakeDetector{video: video, boxes: func(ts float64) []geometry.Rect {
		if ts >= 9.9 {
			return []geometry.Rect{{X: 100, Y: 100, Width: 50, Height: 50}}
		}
		return nil
	}}
	uc := New(Deps{Video: video, Faces: det, Landmarks: &fakeLandmarks{}, Memory: plentyOfMemory()})

	segments := []types.SpeakerSegment{{Speakers: []int{0}, Start: 0, End: 10}}
	in := baseInput("in.mp4", segments)
	in.Logf = func(string, ...any) {}
	if err := uc.scanFirstFaces(context.Background(), video.info, segments, in); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if segments[0].FoundFace {
		t.Fatalf("scanner sampled within the end slack: first face %v", segments[0].FirstFace)
	}
}

func TestRun_RejectsMalformedTimeline(t *testing.T) {
	video := &fakeVideo{info: types.VideoInfo{Width: 1920, Height: 1080, FrameRate: 30, Duration: 10}}
	det := &fakeDetector{video: video, boxes: func(float64) []geometry.Rect { return nil }}
	uc := New(Deps{Video: video, Faces: det, Landmarks: &fakeLandmarks{}, Memory: plentyOfMemory()})

	in := baseInput("in.mp4", []types.SpeakerSegment{
		{Speakers: []int{0}, Start: 0, End: 6},
		{Speakers: []int{1}, Start: 5, End: 10}, // overlap
	})
	if _, err := uc.Run(context.Background(), in); err == nil {
		t.Fatalf("expected validation error")
	}
	if video.extracted != 0 {
		t.Fatalf("no frames should be touched on invalid input, extracted %d", video.extracted)
	}
}
