// Package kbmfile reads and writes the Scala .kbm keyboard-mapping file
// format: pattern size, key range, root/reference anchoring, and one
// pattern entry per remaining line.
package kbmfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chase3718/microtune/keymap"
	"github.com/chase3718/microtune/pitch"
)

// Parse reads a .kbm document from r.
func Parse(r io.Reader) (*keymap.KeyMap, error) {
	scanner := bufio.NewScanner(r)
	var fields []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		fields = append(fields, strings.Fields(line)[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("kbmfile: read: %w", err)
	}
	if len(fields) < 7 {
		return nil, fmt.Errorf("kbmfile: expected at least 7 header fields, got %d", len(fields))
	}

	patternSize, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("kbmfile: invalid pattern size %q: %w", fields[0], err)
	}
	firstKey, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("kbmfile: invalid first key %q: %w", fields[1], err)
	}
	lastKey, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("kbmfile: invalid last key %q: %w", fields[2], err)
	}
	rootKey, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("kbmfile: invalid root key %q: %w", fields[3], err)
	}
	refKey, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("kbmfile: invalid reference key %q: %w", fields[4], err)
	}
	refHz, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return nil, fmt.Errorf("kbmfile: invalid reference frequency %q: %w", fields[5], err)
	}
	formalOctave, err := strconv.Atoi(fields[6])
	if err != nil {
		return nil, fmt.Errorf("kbmfile: invalid formal octave degree count %q: %w", fields[6], err)
	}

	patternFields := fields[7:]
	size := patternSize
	if size == 0 {
		size = len(patternFields)
	}
	if len(patternFields) != size {
		return nil, fmt.Errorf("kbmfile: declared pattern size %d but found %d entries", size, len(patternFields))
	}

	pattern := make([]int, size)
	for i, f := range patternFields {
		if f == "x" || f == "X" {
			pattern[i] = keymap.Unmapped
			continue
		}
		degree, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("kbmfile: invalid pattern entry %q: %w", f, err)
		}
		pattern[i] = degree
	}

	return &keymap.KeyMap{
		FirstMIDIKey:        firstKey,
		LastMIDIKey:         lastKey,
		RootKey:             rootKey,
		ReferenceKey:        refKey,
		ReferencePitch:      pitch.FromHz(refHz),
		FormalOctaveDegrees: formalOctave,
		Pattern:             pattern,
	}, nil
}

// Write renders k as a .kbm document.
func Write(w io.Writer, k *keymap.KeyMap) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "! Size of map. If this is 0, the mapping is the identity mapping.")
	fmt.Fprintln(bw, len(k.Pattern))
	fmt.Fprintln(bw, "! First MIDI note number to retune")
	fmt.Fprintln(bw, k.FirstMIDIKey)
	fmt.Fprintln(bw, "! Last MIDI note number to retune")
	fmt.Fprintln(bw, k.LastMIDIKey)
	fmt.Fprintln(bw, "! Middle note where the first entry of the mapping is mapped to")
	fmt.Fprintln(bw, k.RootKey)
	fmt.Fprintln(bw, "! Reference note for which frequency is given")
	fmt.Fprintln(bw, k.ReferenceKey)
	fmt.Fprintln(bw, "! Frequency to tune the above note to")
	fmt.Fprintf(bw, "%.6f\n", k.ReferencePitch.Hz())
	fmt.Fprintln(bw, "! Scale degree to consider as formal octave")
	fmt.Fprintln(bw, k.FormalOctaveDegrees)
	fmt.Fprintln(bw, "! Mapping")
	for _, entry := range k.Pattern {
		if entry == keymap.Unmapped {
			fmt.Fprintln(bw, "x")
		} else {
			fmt.Fprintln(bw, entry)
		}
	}
	return bw.Flush()
}
