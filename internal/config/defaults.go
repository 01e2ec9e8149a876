package config

// Engine defaults, inherited from the reference tuning of the reframing
// pipeline this module grew out of.
const (
	DefaultSamplesPerSegment   = 13
	DefaultDetectWidth         = 960
	DefaultDetectBatchHint     = 8
	DefaultSceneMergeThreshold = 0.25
	DefaultOverlapThreshold    = 0.5
	DefaultCoalesceRatio       = 0.04
)

// Defaults returns a fully-populated Options.
func Defaults() Options {
	return Options{
		SamplesPerSegment:   DefaultSamplesPerSegment,
		DetectWidth:         DefaultDetectWidth,
		DetectBatchHint:     DefaultDetectBatchHint,
		SceneMergeThreshold: DefaultSceneMergeThreshold,
		OverlapThreshold:    DefaultOverlapThreshold,
		CoalesceRatio:       DefaultCoalesceRatio,
	}
}

func (o *Options) applyDefaults() {
	if o.SamplesPerSegment == 0 {
		o.SamplesPerSegment = DefaultSamplesPerSegment
	}
	if o.DetectWidth == 0 {
		o.DetectWidth = DefaultDetectWidth
	}
	if o.DetectBatchHint == 0 {
		o.DetectBatchHint = DefaultDetectBatchHint
	}
	if o.SceneMergeThreshold == 0 {
		o.SceneMergeThreshold = DefaultSceneMergeThreshold
	}
	if o.OverlapThreshold == 0 {
		o.OverlapThreshold = DefaultOverlapThreshold
	}
	if o.CoalesceRatio == 0 {
		o.CoalesceRatio = DefaultCoalesceRatio
	}
}
