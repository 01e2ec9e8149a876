package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "reframe <input>",
		Short:        "Compute crop rectangles that follow the active speaker",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("segments", "", "Speaker diarization JSON (required)")
	root.Flags().String("scenes", "", "Scene-change times JSON (optional)")
	root.Flags().String("out", "out", "Output directory")
	root.Flags().String("aspect", "9:16", "Target aspect ratio, W:H")
	root.Flags().String("config", "", "Tuning options TOML file")
	root.Flags().Bool("no-split", false, "Disable split-screen layouts")
	_ = root.MarkFlagRequired("segments")

	// Hidden tuning flag (internal)
	root.Flags().Int("samples", 0, "Face samples per segment")
	_ = root.Flags().MarkHidden("samples")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
