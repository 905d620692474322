package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chase3718/microtune/exchange"
	"github.com/chase3718/microtune/keymap"
	"github.com/chase3718/microtune/pitch"
	"github.com/chase3718/microtune/tuning"
)

var (
	dumpRefNote    int
	dumpRefHz      float64
	dumpFirstKey   int
	dumpLastKey    int
	dumpAsAbsolute bool
	dumpOutput     string
	dumpMidiOutput string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <scale-expr>",
	Short: "Export a scale's key-to-pitch mapping as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().IntVar(&dumpRefNote, "ref-note", 69, "MIDI key the scale's root is anchored to")
	dumpCmd.Flags().Float64Var(&dumpRefHz, "ref-hz", 440.0, "frequency, in Hz, of the reference key")
	dumpCmd.Flags().IntVar(&dumpFirstKey, "first-key", 0, "first MIDI key to include")
	dumpCmd.Flags().IntVar(&dumpLastKey, "last-key", 127, "last MIDI key to include")
	dumpCmd.Flags().BoolVar(&dumpAsAbsolute, "absolute", false, "emit absolute Hz per key instead of cents relative to the root")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "output file (default stdout)")
	dumpCmd.Flags().StringVar(&dumpMidiOutput, "midi", "", "also render the mapped key range as a preview Standard MIDI File")
}

func runDump(cmd *cobra.Command, args []string) error {
	s, err := parseScaleExpr(args[0])
	if err != nil {
		return err
	}

	km := keymap.Default()
	km.FirstMIDIKey, km.LastMIDIKey = dumpFirstKey, dumpLastKey
	km.RootKey = dumpRefNote
	km.ReferenceKey = dumpRefNote
	km.ReferencePitch = pitch.FromHz(dumpRefHz)
	ts := tuning.New(s, km)

	var doc *exchange.Document
	if dumpAsAbsolute {
		doc = exchange.NewDumpDocument(ts, dumpFirstKey, dumpLastKey)
	} else {
		doc, err = exchange.NewScaleDocument(ts, dumpRefNote, dumpFirstKey, dumpLastKey)
		if err != nil {
			return err
		}
	}

	data, err := exchange.Marshal(doc)
	if err != nil {
		return err
	}

	if dumpMidiOutput != "" {
		if err := writePreviewSMF(ts, dumpFirstKey, dumpLastKey, dumpMidiOutput); err != nil {
			return fmt.Errorf("dump: midi preview: %w", err)
		}
	}

	if dumpOutput == "" {
		fmt.Print(string(data))
		return nil
	}
	return os.WriteFile(dumpOutput, data, 0o644)
}
