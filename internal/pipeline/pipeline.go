// Package pipeline wires the real adapters to the engine and turns one
// video plus its diarization into a written ResizePlan artifact.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/reframe/internal/config"
	"github.com/forPelevin/reframe/internal/ports"
	"github.com/forPelevin/reframe/internal/ports/adapters/faceapi"
	"github.com/forPelevin/reframe/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/reframe/internal/ports/adapters/sysmem"
	"github.com/forPelevin/reframe/internal/types"
	"github.com/forPelevin/reframe/internal/usecase"
)

type Config struct {
	InputVideo   string
	SegmentsPath string // diarization output: JSON array of speaker segments
	ScenesPath   string // optional: JSON array of scene-change seconds
	OutDir       string

	AspectWidth  int
	AspectHeight int

	Options config.Options

	Logf func(format string, args ...any)

	FFmpegPath  string
	FFprobePath string
	NvidiaSMI   string

	FaceServiceURL string
	FaceServiceKey string
}

func (c Config) Validate() error {
	if c.InputVideo == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputVideo); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.SegmentsPath == "" {
		return errors.New("speaker segments file is required")
	}
	if _, err := os.Stat(c.SegmentsPath); err != nil {
		return fmt.Errorf("stat segments: %w", err)
	}
	if c.AspectWidth <= 0 || c.AspectHeight <= 0 {
		return fmt.Errorf("aspect ratio must be positive, got %d:%d", c.AspectWidth, c.AspectHeight)
	}
	if err := c.Options.Validate(); err != nil {
		return err
	}
	return faceapi.ValidateBaseURL(c.FaceServiceURL)
}

type Result struct {
	Plan     types.ResizePlan
	PlanPath string
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	segments, err := loadSegments(cfg.SegmentsPath)
	if err != nil {
		return Result{}, err
	}
	scenes, err := loadScenes(cfg.ScenesPath)
	if err != nil {
		return Result{}, err
	}
	logf("loaded %d speaker segments, %d scene changes", len(segments), len(scenes))

	// adapters
	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	face := faceapi.New(cfg.FaceServiceKey, cfg.FaceServiceURL)
	memory := sysmem.New(cfg.NvidiaSMI)

	uc := usecase.New(usecase.Deps{
		Video:     video,
		Faces:     face,
		Landmarks: face,
		Memory:    memory,
	})

	res, err := uc.Run(ctx, usecase.Input{
		VideoPath:           cfg.InputVideo,
		Segments:            segments,
		SceneChanges:        scenes,
		AspectWidth:         cfg.AspectWidth,
		AspectHeight:        cfg.AspectHeight,
		SamplesPerSegment:   cfg.Options.SamplesPerSegment,
		DetectWidth:         cfg.Options.DetectWidth,
		DetectBatchHint:     cfg.Options.DetectBatchHint,
		SceneMergeThreshold: cfg.Options.SceneMergeThreshold,
		OverlapThreshold:    cfg.Options.OverlapThreshold,
		CoalesceRatio:       cfg.Options.CoalesceRatio,
		SplitScreen:         cfg.Options.SplitScreenEnabled(),
		Seed:                time.Now().UnixNano(),
		Logf:                logf,
	})
	if err != nil {
		return Result{}, err
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.InputVideo, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return Result{}, err
	}

	b, err := json.MarshalIndent(res.Plan, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("marshal plan: %w", err)
	}
	planPath := filepath.Join(runOutDir, "plan.json")
	if err := os.WriteFile(planPath, b, 0o644); err != nil {
		return Result{}, err
	}
	logf("plan written (%d segments): %s", len(res.Plan.Segments), planPath)

	return Result{Plan: res.Plan, PlanPath: planPath}, nil
}

func loadSegments(path string) ([]types.SpeakerSegment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}
	var segments []types.SpeakerSegment
	if err := json.Unmarshal(b, &segments); err != nil {
		return nil, fmt.Errorf("parse segments %s: %w", path, err)
	}
	return segments, nil
}

func loadScenes(path string) ([]float64, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene changes: %w", err)
	}
	var scenes []float64
	if err := json.Unmarshal(b, &scenes); err != nil {
		return nil, fmt.Errorf("parse scene changes %s: %w", path, err)
	}
	return scenes, nil
}

func buildRunOutDir(outRoot, inputVideo string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputVideo), filepath.Ext(inputVideo))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputVideo, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoSource = (*ffmpeg.Adapter)(nil)
var _ ports.FaceDetector = (*faceapi.Adapter)(nil)
var _ ports.LandmarkExtractor = (*faceapi.Adapter)(nil)
var _ ports.MemoryProbe = (*sysmem.Probe)(nil)
