package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/reframe/internal/config"
	"github.com/forPelevin/reframe/internal/pipeline"
	"github.com/spf13/cobra"
)

func run(cmd *cobra.Command, input string) error {
	segmentsPath, _ := cmd.Flags().GetString("segments")
	scenesPath, _ := cmd.Flags().GetString("scenes")
	outDir, _ := cmd.Flags().GetString("out")
	aspect, _ := cmd.Flags().GetString("aspect")
	configPath, _ := cmd.Flags().GetString("config")
	noSplit, _ := cmd.Flags().GetBool("no-split")
	samples, _ := cmd.Flags().GetInt("samples")

	aw, ah, err := parseAspect(aspect)
	if err != nil {
		return err
	}

	opts, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if noSplit {
		off := false
		opts.SplitScreen = &off
	}
	if samples > 0 {
		opts.SamplesPerSegment = samples
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	cfg := pipeline.Config{
		InputVideo:   absIn,
		SegmentsPath: segmentsPath,
		ScenesPath:   scenesPath,
		OutDir:       outDir,
		AspectWidth:  aw,
		AspectHeight: ah,
		Options:      opts,

		Logf: func(format string, args ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
		},

		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		NvidiaSMI:   "nvidia-smi",

		FaceServiceURL: getenvDefault("FACE_SERVICE_URL", "http://127.0.0.1:8791"),
		FaceServiceKey: os.Getenv("FACE_SERVICE_KEY"),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderPlan(res.Plan))
	fmt.Fprintf(cmd.OutOrStdout(), "plan: %s\n", res.PlanPath)
	return nil
}

func parseAspect(s string) (int, int, error) {
	w, h, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("aspect must be W:H, got %q", s)
	}
	aw, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return 0, 0, fmt.Errorf("aspect width %q: %w", w, err)
	}
	ah, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, fmt.Errorf("aspect height %q: %w", h, err)
	}
	if aw <= 0 || ah <= 0 {
		return 0, 0, fmt.Errorf("aspect must be positive, got %d:%d", aw, ah)
	}
	return aw, ah, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
