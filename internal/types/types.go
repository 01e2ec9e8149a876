package types

// VideoInfo describes the source video as reported by the prober.
type VideoInfo struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frame_rate"`
	Duration  float64 `json:"duration_sec"`
}

// SpeakerSegment is one diarized stretch of the timeline. Start and End are
// seconds. The scanner annotates the face fields in place as the pipeline
// advances.
type SpeakerSegment struct {
	Speakers []int   `json:"speakers"`
	Start    float64 `json:"start_time"`
	End      float64 `json:"end_time"`

	FoundFace bool    `json:"-"`
	FirstFace float64 `json:"-"`
}

// CropType distinguishes single full-frame crops from split-screen layouts.
type CropType string

const (
	CropSingle CropType = "single"
	CropSplit  CropType = "split"
)

// SubCrop is one tile of a split-screen layout: a source rectangle plus its
// placement in the output canvas.
type SubCrop struct {
	X       int `json:"x"`
	Y       int `json:"y"`
	Width   int `json:"width"`
	Height  int `json:"height"`
	TargetX int `json:"target_x"`
	TargetY int `json:"target_y"`
}

// CropSegment is the final per-segment crop decision. For CropSingle only X
// and Y are meaningful (the crop size is the plan-level crop size); for
// CropSplit the sub-crops carry their own sizes and target placements.
type CropSegment struct {
	Speakers []int     `json:"speakers"`
	Start    float64   `json:"start_time"`
	End      float64   `json:"end_time"`
	Type     CropType  `json:"crop_type"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	SubCrops []SubCrop `json:"crops,omitempty"`
}

// ResizePlan is the engine output: source dimensions, crop dimensions, and a
// gap-free ordered sequence of crop segments covering the video duration.
type ResizePlan struct {
	OriginalWidth  int           `json:"original_width"`
	OriginalHeight int           `json:"original_height"`
	CropWidth      int           `json:"crop_width"`
	CropHeight     int           `json:"crop_height"`
	Segments       []CropSegment `json:"segments"`
}
