// Package ffmpeg adapts ffmpeg/ffprobe executables to the VideoSource port.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"

	"github.com/forPelevin/reframe/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) Probe(ctx context.Context, path string) (types.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.VideoInfo{}, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}

	var out struct {
		Streams []struct {
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			FrameRate string `json:"r_frame_rate"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return types.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return types.VideoInfo{}, fmt.Errorf("no video stream in %s", path)
	}

	fps, err := parseRate(out.Streams[0].FrameRate)
	if err != nil {
		return types.VideoInfo{}, err
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
	if err != nil {
		return types.VideoInfo{}, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
	}
	return types.VideoInfo{
		Width:     out.Streams[0].Width,
		Height:    out.Streams[0].Height,
		FrameRate: fps,
		Duration:  dur,
	}, nil
}

func (a *Adapter) ExtractFrames(ctx context.Context, path string, times []float64) ([]image.Image, error) {
	frames := make([]image.Image, 0, len(times))
	for _, t := range times {
		img, err := a.extractOne(ctx, path, t)
		if err != nil {
			return nil, fmt.Errorf("frame at %.3fs: %w", t, err)
		}
		frames = append(frames, img)
	}
	return frames, nil
}

func (a *Adapter) extractOne(ctx context.Context, path string, t float64) (image.Image, error) {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-ss", strconv.FormatFloat(t, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg extract: %w\n%s", err, stderr.String())
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

// parseRate parses ffprobe's rational frame rates ("30000/1001" or "25").
func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
		return n / d, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	return f, nil
}
