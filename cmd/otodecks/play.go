// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/otodecks/device"
	"github.com/ik5/otodecks/device/speaker"
	"github.com/ik5/otodecks/internal/console"
	"github.com/ik5/otodecks/logger"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <track>...",
	Short: "Play tracks, one per deck",
	Long: `Load one track per deck and play them all through the sound card until
every deck has reached its end or the command is interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

// live is a rig wired to the sound card.
type live struct {
	*rig
	out *device.Output
	spk *speaker.Speaker
}

func openLive(r *rig) (*live, error) {
	cfg := r.cfg

	out := device.NewOutput(r.mixer, cfg.Audio.Channels, logger.WithComponent("output"))
	if err := out.Prepare(cfg.Audio.BlockSize, float64(cfg.Audio.SampleRate)); err != nil {
		return nil, err
	}

	spk, err := speaker.Open(out, cfg.Audio.SampleRate, cfg.Audio.Channels, cfg.Audio.Buffer)
	if err != nil {
		out.Release()
		return nil, err
	}

	out.SetPlaying(true)
	if err := spk.Play(); err != nil {
		out.Release()
		_ = spk.Close()
		return nil, err
	}

	return &live{rig: r, out: out, spk: spk}, nil
}

func (l *live) close() error {
	l.out.SetPlaying(false)
	l.spk.Pause()
	err := l.spk.Close()
	l.out.Release()

	if cerr := l.rig.close(); cerr != nil {
		return cerr
	}

	return err
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	r, err := newRig(cfg)
	if err != nil {
		return err
	}

	if err := r.load(args); err != nil {
		_ = r.close()
		return err
	}

	l, err := openLive(r)
	if err != nil {
		_ = r.close()
		return err
	}
	defer l.close()

	r.startLoaded()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(collectEvery)
	defer ticker.Stop()

	progress := time.NewTicker(time.Second)
	defer progress.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(cmd.OutOrStdout())
			slog.Info("interrupted")
			return nil
		case <-ticker.C:
			r.collect()
			if err := l.spk.Err(); err != nil {
				return fmt.Errorf("audio device: %w", err)
			}
			if r.done() {
				return nil
			}
		case <-progress.C:
			printProgress(cmd, r)
		}
	}
}

func printProgress(cmd *cobra.Command, r *rig) {
	for _, d := range r.decks {
		if d.Loaded() {
			fmt.Fprintln(cmd.OutOrStdout(), console.FormatStatus(d.Status()))
		}
	}
}
