package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chase3718/microtune/ratio"
	"github.com/chase3718/microtune/scale"
	"github.com/chase3718/microtune/sclfile"
)

// parseScaleExpr parses the scale description grammar accepted by every
// subcommand that takes a <scale-expr> argument:
//
//	edo:<n>                         equal division of the octave
//	edo:<n>:<period>                equal division of an arbitrary period
//	rank2:<generator>:<pos>:<neg>   generator/period temperament
//	harmonic:<lowest>:<count>       harmonic series segment
//	subharmonic:<lowest>:<count>    subharmonic series segment
//	<path>.scl                      Scala scale file
func parseScaleExpr(expr string) (*scale.Scale, error) {
	if strings.HasSuffix(strings.ToLower(expr), ".scl") {
		f, err := os.Open(expr)
		if err != nil {
			return nil, fmt.Errorf("scale expression %q: %w", expr, err)
		}
		defer f.Close()
		return sclfile.Parse(f)
	}

	parts := strings.Split(expr, ":")
	switch parts[0] {
	case "edo":
		if len(parts) < 2 {
			return nil, fmt.Errorf("scale expression %q: edo requires a step count", expr)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("scale expression %q: %w", expr, err)
		}
		period := ratio.Octave()
		if len(parts) >= 3 {
			period, err = ratio.Parse(parts[2])
			if err != nil {
				return nil, fmt.Errorf("scale expression %q: %w", expr, err)
			}
		}
		return scale.NewEqualDivision(n, period)

	case "rank2":
		if len(parts) < 4 {
			return nil, fmt.Errorf("scale expression %q: rank2 requires generator:pos:neg", expr)
		}
		gen, err := ratio.Parse(parts[1])
		if err != nil {
			return nil, fmt.Errorf("scale expression %q: %w", expr, err)
		}
		pos, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("scale expression %q: %w", expr, err)
		}
		neg, err := strconv.Atoi(parts[3])
		if err != nil {
			return nil, fmt.Errorf("scale expression %q: %w", expr, err)
		}
		return scale.NewRank2Temperament(gen, ratio.Octave(), pos, neg)

	case "harmonic", "subharmonic":
		if len(parts) < 3 {
			return nil, fmt.Errorf("scale expression %q: %s requires lowest:count", expr, parts[0])
		}
		lowest, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("scale expression %q: %w", expr, err)
		}
		count, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("scale expression %q: %w", expr, err)
		}
		return scale.NewHarmonicScale(lowest, count, parts[0] == "subharmonic")

	default:
		return nil, fmt.Errorf("scale expression %q: unrecognized form %q", expr, parts[0])
	}
}
