package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chase3718/microtune/kbmfile"
	"github.com/chase3718/microtune/keymap"
	"github.com/chase3718/microtune/pitch"
)

var (
	kbmExportOutput   string
	kbmExportFirst    int
	kbmExportLast     int
	kbmExportRoot     int
	kbmExportRef      int
	kbmExportRefHz    float64
)

var kbmCmd = &cobra.Command{
	Use:   "kbm",
	Short: "Export and import Scala .kbm keyboard mapping files",
}

var kbmExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the identity keyboard mapping (optionally re-anchored) as a .kbm file",
	Args:  cobra.NoArgs,
	RunE:  runKbmExport,
}

var kbmImportCmd = &cobra.Command{
	Use:   "import <file.kbm>",
	Short: "Describe a .kbm file's key range and pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runKbmImport,
}

func init() {
	kbmExportCmd.Flags().StringVarP(&kbmExportOutput, "output", "o", "", "output file (default stdout)")
	kbmExportCmd.Flags().IntVar(&kbmExportFirst, "first-key", 0, "first MIDI key to map")
	kbmExportCmd.Flags().IntVar(&kbmExportLast, "last-key", 127, "last MIDI key to map")
	kbmExportCmd.Flags().IntVar(&kbmExportRoot, "root-key", 69, "MIDI key mapped to scale degree 0")
	kbmExportCmd.Flags().IntVar(&kbmExportRef, "ref-key", 69, "MIDI key the reference frequency is given for")
	kbmExportCmd.Flags().Float64Var(&kbmExportRefHz, "ref-hz", 440.0, "reference frequency, in Hz")
	kbmCmd.AddCommand(kbmExportCmd)
	kbmCmd.AddCommand(kbmImportCmd)
}

func runKbmExport(cmd *cobra.Command, args []string) error {
	k := keymap.Default()
	k.FirstMIDIKey, k.LastMIDIKey = kbmExportFirst, kbmExportLast
	k.RootKey = kbmExportRoot
	k.ReferenceKey = kbmExportRef
	k.ReferencePitch = pitch.FromHz(kbmExportRefHz)
	if kbmExportOutput == "" {
		return kbmfile.Write(os.Stdout, k)
	}
	f, err := os.Create(kbmExportOutput)
	if err != nil {
		return err
	}
	defer f.Close()
	return kbmfile.Write(f, k)
}

func runKbmImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	k, err := kbmfile.Parse(f)
	if err != nil {
		return err
	}
	if err := k.Validate(); err != nil {
		return err
	}
	fmt.Printf("keys [%d, %d], root=%d, ref=%d@%.3fHz, pattern length=%d, formal octave=%d degrees\n",
		k.FirstMIDIKey, k.LastMIDIKey, k.RootKey, k.ReferenceKey, k.ReferencePitch.Hz(), len(k.Pattern), k.FormalOctaveDegrees)
	return nil
}
