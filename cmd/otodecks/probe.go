// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/ik5/otodecks"
	"github.com/ik5/otodecks/internal/console"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <track>...",
	Short: "Show sample rate, channels and length of tracks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	reg := otodecks.NewRegistry()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRACK\tRATE\tCHANNELS\tLENGTH")

	var failed int
	for _, arg := range args {
		src, err := reg.Open(resolveTrack(cfg, arg))
		if err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t%v\n", filepath.Base(arg), err)
			failed++
			continue
		}

		length := float64(src.Len()) / float64(src.SampleRate())
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", filepath.Base(arg), src.SampleRate(), src.Channels(), console.FormatClock(length))
		_ = src.Close()
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tracks could not be read", failed, len(args))
	}

	return nil
}
