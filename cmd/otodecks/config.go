// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"log/slog"

	"github.com/ik5/otodecks/config"
	"github.com/ik5/otodecks/logger"
	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Commands for showing and validating otodecks configuration.",
}

// configValidateCmd validates the current configuration
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the current configuration file, environment variables and flags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Setup("info", "text"); err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if err := cfg.Validate(); err != nil {
			slog.Error("Configuration validation failed", slog.Any("error", err))
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
		return nil
	},
}

// configShowCmd shows the current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the configuration values in effect after file, environment and flags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Setup("info", "text"); err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Current Configuration:")
		fmt.Fprintf(w, "  Audio:\n")
		fmt.Fprintf(w, "    Sample rate: %d Hz\n", cfg.Audio.SampleRate)
		fmt.Fprintf(w, "    Block size: %d frames\n", cfg.Audio.BlockSize)
		fmt.Fprintf(w, "    Channels: %d\n", cfg.Audio.Channels)
		fmt.Fprintf(w, "    Buffer: %s\n", cfg.Audio.Buffer)
		fmt.Fprintf(w, "  Mixer:\n")
		fmt.Fprintf(w, "    Clipping: %s\n", cfg.ClipMode())
		fmt.Fprintf(w, "  Decks:\n")
		fmt.Fprintf(w, "    Count: %d\n", cfg.Decks.Count)
		fmt.Fprintf(w, "    Gain: %.2f\n", cfg.Decks.Gain)
		fmt.Fprintf(w, "    Speed: %.2f\n", cfg.Decks.Speed)
		fmt.Fprintf(w, "  Library:\n")
		fmt.Fprintf(w, "    Tracks: %s\n", cfg.Library.TracksDir)
		fmt.Fprintf(w, "  Logging:\n")
		fmt.Fprintf(w, "    Level: %s\n", cfg.Logging.Level)
		fmt.Fprintf(w, "    Format: %s\n", cfg.Logging.Format)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
