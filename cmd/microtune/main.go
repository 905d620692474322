// Command microtune computes and applies microtonal tunings: it can
// describe a scale, dump it to a file, convert to and from Scala .scl/
// .kbm files, and drive a live MIDI retuning session either ahead of
// time or just in time.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	debug  bool
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "microtune",
	Short: "Compute and apply microtonal scale tunings over MIDI",
	Long: `microtune builds scales from equal divisions, rank-2 generators,
harmonic series or Scala .scl files, maps them onto MIDI keys with a .kbm
keyboard mapping, and retunes a synthesizer live using the MIDI Tuning
Standard, Channel Fine Tuning, or Pitch Bend.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogger(debug)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(scaleCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(sclCmd)
	rootCmd.AddCommand(kbmCmd)
	rootCmd.AddCommand(liveCmd)
}

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
