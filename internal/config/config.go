// Package config holds the engine tuning knobs, loadable from an optional
// TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Options tunes the reframing engine. Zero values mean "use the default".
type Options struct {
	SamplesPerSegment   int     `toml:"samples_per_segment"`
	DetectWidth         int     `toml:"face_detect_width"`
	DetectBatchHint     int     `toml:"face_detect_batches"`
	SceneMergeThreshold float64 `toml:"scene_merge_threshold"`
	OverlapThreshold    float64 `toml:"roi_overlap_threshold"`
	CoalesceRatio       float64 `toml:"coalesce_ratio"`
	SplitScreen         *bool   `toml:"split_screen"`
}

// Load reads options from path, applying defaults for unset fields. An
// empty path or a missing file yields pure defaults.
func Load(path string) (Options, error) {
	opts := Defaults()
	if path == "" {
		return opts, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return opts, nil
	}
	if err != nil {
		return Options{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, &opts); err != nil {
		return Options{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("config %s: %w", path, err)
	}
	return opts, nil
}

// Validate rejects values the engine cannot work with.
func (o Options) Validate() error {
	if o.SamplesPerSegment <= 0 {
		return fmt.Errorf("samples_per_segment must be > 0")
	}
	if o.DetectWidth <= 0 {
		return fmt.Errorf("face_detect_width must be > 0")
	}
	if o.DetectBatchHint < 0 {
		return fmt.Errorf("face_detect_batches must be >= 0")
	}
	if o.SceneMergeThreshold <= 0 {
		return fmt.Errorf("scene_merge_threshold must be > 0")
	}
	if o.OverlapThreshold <= 0 || o.OverlapThreshold >= 1 {
		return fmt.Errorf("roi_overlap_threshold must be in (0, 1)")
	}
	if o.CoalesceRatio <= 0 || o.CoalesceRatio >= 1 {
		return fmt.Errorf("coalesce_ratio must be in (0, 1)")
	}
	return nil
}

// SplitScreenEnabled resolves the tri-state toggle (default on).
func (o Options) SplitScreenEnabled() bool {
	return o.SplitScreen == nil || *o.SplitScreen
}
