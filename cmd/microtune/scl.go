package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chase3718/microtune/sclfile"
)

var sclExportOutput string

var sclCmd = &cobra.Command{
	Use:   "scl",
	Short: "Export and import Scala .scl scale files",
}

var sclExportCmd = &cobra.Command{
	Use:   "export <scale-expr>",
	Short: "Render a scale expression as a .scl file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSclExport,
}

var sclImportCmd = &cobra.Command{
	Use:   "import <file.scl>",
	Short: "Print a .scl file's description, note count, and degrees 1..N in cents and as a linear ratio",
	Args:  cobra.ExactArgs(1),
	RunE:  runSclImport,
}

func init() {
	sclExportCmd.Flags().StringVarP(&sclExportOutput, "output", "o", "", "output file (default stdout)")
	sclCmd.AddCommand(sclExportCmd)
	sclCmd.AddCommand(sclImportCmd)
}

func runSclExport(cmd *cobra.Command, args []string) error {
	s, err := parseScaleExpr(args[0])
	if err != nil {
		return err
	}
	if sclExportOutput == "" {
		return sclfile.Write(os.Stdout, s)
	}
	f, err := os.Create(sclExportOutput)
	if err != nil {
		return err
	}
	defer f.Close()
	return sclfile.Write(f, s)
}

func runSclImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	s, err := sclfile.Parse(f)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d notes)\n", s.Description, s.Size())
	for degree := 1; degree <= s.Size(); degree++ {
		r := s.DegreeToRatio(degree)
		fmt.Printf("  degree %3d: %v  %8.3fc\n", degree, r, r.Cents())
	}
	return nil
}
