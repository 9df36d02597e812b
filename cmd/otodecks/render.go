// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/ik5/otodecks"
	"github.com/ik5/otodecks/formats/wav"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render -o <out.wav> <track>...",
	Short: "Mix tracks to a WAV file",
	Long: `Load one track per deck, start them together and write the mix as 16-bit
WAV at the configured sample rate. Rendering stops when every deck has ended
or after --seconds, whichever comes first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("output", "o", "mix.wav", "output WAV file")
	renderCmd.Flags().Float64("seconds", 600, "maximum length to render")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	seconds, _ := cmd.Flags().GetFloat64("seconds")
	if !(seconds > 0) {
		return fmt.Errorf("--seconds must be positive, got %v", seconds)
	}

	r, err := newRig(cfg)
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.load(args); err != nil {
		return err
	}
	if err := r.prepare(); err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w, err := wav.NewWriter(f, cfg.Audio.SampleRate, cfg.Audio.Channels)
	if err != nil {
		return err
	}

	r.startLoaded()

	start := time.Now()
	maxFrames := int64(min(seconds*float64(cfg.Audio.SampleRate), math.MaxInt64/2))
	frames, err := otodecks.RenderTo(r.mixer, cfg.Audio.Channels, cfg.Audio.BlockSize, maxFrames, r.done, w.Write)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	length := time.Duration(float64(frames) / float64(cfg.Audio.SampleRate) * float64(time.Second))

	slog.Info("render finished",
		slog.String("file", output),
		slog.Int64("frames", frames),
		slog.Duration("took", time.Since(start)))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", output, length.Round(time.Millisecond))

	return f.Close()
}
