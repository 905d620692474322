// Package sclfile reads and writes the Scala .scl scale file format: a
// comment-prefixed description line, a step count, and one ratio or
// cents value per line.
package sclfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chase3718/microtune/ratio"
	"github.com/chase3718/microtune/scale"
)

// Parse reads a .scl document from r and builds the Scale it describes.
// The scale's period is taken from its final step, matching the Scala
// convention that the last line closes the scale (typically at 2/1).
func Parse(r io.Reader) (*scale.Scale, error) {
	scanner := bufio.NewScanner(r)

	var description string
	var count int
	haveDescription := false
	haveCount := false
	var steps []ratio.Ratio

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		if !haveDescription {
			description = line
			haveDescription = true
			continue
		}
		if !haveCount {
			n, err := strconv.Atoi(strings.Fields(line)[0])
			if err != nil {
				return nil, fmt.Errorf("sclfile: invalid step count %q: %w", line, err)
			}
			count = n
			haveCount = true
			continue
		}
		r, err := parseStepLine(line)
		if err != nil {
			return nil, fmt.Errorf("sclfile: invalid step %q: %w", line, err)
		}
		steps = append(steps, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sclfile: read: %w", err)
	}
	if !haveDescription || !haveCount {
		return nil, fmt.Errorf("sclfile: document is missing description or step count")
	}
	if len(steps) != count {
		return nil, fmt.Errorf("sclfile: declared %d steps but found %d", count, len(steps))
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("sclfile: scale has no steps")
	}

	period := steps[len(steps)-1]
	return scale.NewCustom(steps, period, description, true)
}

// parseStepLine parses one .scl step: either a cents value (recognized by
// its decimal point) or a ratio "n/d" (or bare integer, meaning n/1).
func parseStepLine(line string) (ratio.Ratio, error) {
	field := strings.Fields(line)[0]
	if strings.Contains(field, "/") || !strings.Contains(field, ".") {
		if strings.Contains(field, "/") {
			parts := strings.SplitN(field, "/", 2)
			numer, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return ratio.Ratio{}, err
			}
			denom, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return ratio.Ratio{}, err
			}
			return ratio.FromFraction(numer, denom), nil
		}
		numer, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return ratio.Ratio{}, err
		}
		return ratio.FromFraction(numer, 1), nil
	}
	cents, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return ratio.Ratio{}, err
	}
	return ratio.FromCents(cents), nil
}

// Write renders s as a .scl document.
func Write(w io.Writer, s *scale.Scale) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "! exported scale\n!\n")
	fmt.Fprintln(bw, s.Description)
	fmt.Fprintf(bw, " %d\n", s.Size())
	fmt.Fprintln(bw, "!")
	for _, step := range s.Steps {
		fmt.Fprintf(bw, "%.6f\n", step.Cents())
	}
	return bw.Flush()
}
