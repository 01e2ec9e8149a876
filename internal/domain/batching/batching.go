// Package batching bounds the peak working-set size of frame extraction and
// face detection by splitting a round of frames into batches that fit the
// reported memory budgets.
package batching

const bytesPerPixel = 3 // packed RGB

// Input describes one round of frames to extract and detect.
type Input struct {
	FrameWidth  int
	FrameHeight int
	NumFrames   int
	DetectWidth int // frames are downsampled to this width before detection

	// DetectBatchHint is the caller's floor on batch count when an
	// accelerated detection pool exists. Ignored otherwise.
	DetectBatchHint int

	FreeGeneral     uint64 // bytes available to the extraction buffers
	FreeAccelerated uint64 // bytes available to the detection buffers
	AcceleratedOK   bool   // false: detection shares the general pool
}

// Plan is the computed batch split plus per-batch memory estimates for
// diagnostics.
type Plan struct {
	Batches             int
	ExtractBytes        uint64 // total raw-extraction footprint for the round
	DetectBytes         uint64 // total detection-buffer footprint for the round
	GeneralPerBatch     uint64
	AcceleratedPerBatch uint64
}

// Calc returns the minimum batch count such that each batch's extraction and
// detection buffers fit their budgets. A pool reporting zero free bytes is
// treated as exhausted: that constraint degrades to a single batch and the
// caller proceeds accepting higher peak memory. The result is always >= 1.
func Calc(in Input) Plan {
	extractBytes := uint64(in.NumFrames) * frameBytes(in.FrameWidth, in.FrameHeight)

	detectHeight := detectHeightFor(in.FrameWidth, in.FrameHeight, in.DetectWidth)
	detectBytes := uint64(in.NumFrames) * frameBytes(in.DetectWidth, detectHeight)

	plan := Plan{ExtractBytes: extractBytes, DetectBytes: detectBytes}

	var batches int
	if in.AcceleratedOK {
		batches = fitBatches(extractBytes, in.FreeGeneral)
		if n := fitBatches(detectBytes, in.FreeAccelerated); n > batches {
			batches = n
		}
		if in.DetectBatchHint > batches {
			batches = in.DetectBatchHint
		}
	} else {
		// no accelerated pool: both buffers live in general memory
		batches = fitBatches(extractBytes+detectBytes, in.FreeGeneral)
	}
	if batches < 1 {
		batches = 1
	}
	plan.Batches = batches

	plan.GeneralPerBatch = extractBytes / uint64(batches)
	if in.AcceleratedOK {
		plan.AcceleratedPerBatch = detectBytes / uint64(batches)
	} else {
		plan.GeneralPerBatch = (extractBytes + detectBytes) / uint64(batches)
	}
	return plan
}

// FramesPerBatch splits n frames across the plan's batches.
func (p Plan) FramesPerBatch(n int) int {
	return n/p.Batches + 1
}

func fitBatches(total, budget uint64) int {
	if budget == 0 {
		return 1
	}
	return int(total/budget) + 1
}

func frameBytes(width, height int) uint64 {
	return uint64(width) * uint64(height) * bytesPerPixel
}

func detectHeightFor(width, height, detectWidth int) int {
	if detectWidth <= 0 || width <= detectWidth {
		return height
	}
	factor := float64(width) / float64(detectWidth)
	return int(float64(height) / factor)
}
