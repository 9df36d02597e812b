// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/ik5/otodecks/internal/console"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console [track]...",
	Short: "Control the decks interactively",
	Long: `Open the sound card and read deck commands from the terminal. Tracks given
on the command line are loaded one per deck. Type help for the command list.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
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

	decks := make([]console.Deck, len(r.decks))
	names := make([]readline.PrefixCompleterInterface, len(r.decks))
	for i, d := range r.decks {
		decks[i] = d
		names[i] = readline.PcItem(d.Name())
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(console.Commands()))
	for _, c := range console.Commands() {
		items = append(items, readline.PcItem(c, names...))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "otodecks> ",
		AutoComplete: readline.NewPrefixCompleter(items...),
		Stdout:       cmd.OutOrStdout(),
	})
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer rl.Close()

	c := console.New(decks, l.out, rl.Stdout(),
		console.WithResolver(func(s string) string { return resolveTrack(cfg, s) }))

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if strings.TrimSpace(line) == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		err = c.Exec(line)
		r.collect()

		switch {
		case errors.Is(err, console.ErrQuit):
			return nil
		case err != nil:
			fmt.Fprintln(rl.Stderr(), "error:", err)
		}
	}
}
