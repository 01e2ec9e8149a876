package usecase

import (
	"context"
	"image"
	"image/draw"

	"github.com/nfnt/resize"

	"github.com/forPelevin/reframe/internal/domain/geometry"
	"github.com/forPelevin/reframe/internal/types"
)

// detectRound extracts frames at the given timestamps and detects faces in
// them, split across memory-budgeted batches. Batches run to completion one
// at a time so buffers of at most one batch are live; results come back in
// timestamp order.
func (u Usecase) detectRound(ctx context.Context, info types.VideoInfo, times []float64, in Input) ([][]geometry.Rect, error) {
	if len(times) == 0 {
		return nil, nil
	}
	plan := u.batchPlan(ctx, info, len(times), in)
	per := plan.FramesPerBatch(len(times))

	all := make([][]geometry.Rect, 0, len(times))
	for i := 0; i < plan.Batches; i++ {
		lo := i * per
		if lo >= len(times) {
			break
		}
		hi := min((i+1)*per, len(times))

		frames, err := u.d.Video.ExtractFrames(ctx, in.VideoPath, times[lo:hi])
		if err != nil {
			return nil, err
		}
		dets, err := u.detectFaces(ctx, frames, in.DetectWidth)
		if err != nil {
			return nil, err
		}
		all = append(all, dets...)
	}
	return all, nil
}

// detectFaces downsamples frames to the detection width, runs the detector,
// and scales boxes back to source coordinates, clamped to >= 0.
func (u Usecase) detectFaces(ctx context.Context, frames []image.Image, detectWidth int) ([][]geometry.Rect, error) {
	if len(frames) == 0 {
		return nil, nil
	}

	bounds := frames[0].Bounds()
	factor := 1.0
	if detectWidth > 0 && bounds.Dx() > detectWidth {
		factor = float64(bounds.Dx()) / float64(detectWidth)
	}

	detectFrames := frames
	if factor > 1 {
		detectHeight := uint(float64(bounds.Dy()) / factor)
		detectFrames = make([]image.Image, len(frames))
		for i, f := range frames {
			detectFrames[i] = resize.Resize(uint(detectWidth), detectHeight, f, resize.Bilinear)
		}
	}

	dets, err := u.d.Faces.Detect(ctx, detectFrames)
	if err != nil {
		return nil, err
	}

	out := make([][]geometry.Rect, len(dets))
	for i, boxes := range dets {
		for _, b := range boxes {
			x1 := int(float64(max(b.X, 0)) * factor)
			y1 := int(float64(max(b.Y, 0)) * factor)
			x2 := int(float64(max(b.X+b.Width, 0)) * factor)
			y2 := int(float64(max(b.Y+b.Height, 0)) * factor)
			out[i] = append(out[i], geometry.FromCorners(x1, y1, x2, y2))
		}
	}
	return out, nil
}

// cropFace copies the face region out of a frame, clipped to the frame.
func cropFace(frame image.Image, box geometry.Rect) image.Image {
	b := frame.Bounds()
	r := image.Rect(box.X, box.Y, box.X+box.Width, box.Y+box.Height).
		Add(b.Min).
		Intersect(b)
	if r.Empty() {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), frame, r.Min, draw.Src)
	return out
}
