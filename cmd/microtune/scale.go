package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Inspect scales",
}

var describeCmd = &cobra.Command{
	Use:   "describe <scale-expr>",
	Short: "Print every degree of a scale in cents and as a linear ratio",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	scaleCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	s, err := parseScaleExpr(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", s.Description, s.Kind)
	fmt.Printf("period: %v (%.3fc)\n", s.Period, s.Period.Cents())
	for degree := 0; degree <= s.Size(); degree++ {
		r := s.DegreeToRatio(degree)
		fmt.Printf("  degree %3d: %v  %8.3fc\n", degree, r, r.Cents())
	}
	return nil
}
