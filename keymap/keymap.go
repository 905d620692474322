// Package keymap implements the Scala .kbm keyboard-mapping model: a
// repeating pattern of scale degrees assigned to MIDI keys, anchored to a
// reference key/pitch and a root key, with an independent "formal octave"
// controlling how many scale degrees the pattern repeats over.
package keymap

import (
	"fmt"

	"github.com/chase3718/microtune/pitch"
)

// Unmapped marks a pattern entry that silences the corresponding key
// within the repeating pattern (Scala's "x" entry).
const Unmapped = -1

// KeyMap maps MIDI keys onto scale degrees via a repeating pattern. A key
// within [FirstMIDIKey, LastMIDIKey] maps to degree:
//
//	octave, index := divMod(key - RootKey, len(Pattern))
//	degree = Pattern[index] + octave*FormalOctaveDegrees
//
// unless Pattern[index] == Unmapped, in which case the key does not
// sound.
type KeyMap struct {
	FirstMIDIKey, LastMIDIKey int
	RootKey                   int
	ReferenceKey              int
	ReferencePitch            pitch.Pitch
	FormalOctaveDegrees       int
	Pattern                   []int
}

// Default returns the conventional 1:1 mapping: every MIDI key maps
// directly to the scale degree numerically equal to its distance from the
// root key, repeating every scale step (no formal-octave folding), rooted
// and referenced at concert pitch A4=440Hz, key 69.
func Default() *KeyMap {
	ref := pitch.DefaultReference()
	return &KeyMap{
		FirstMIDIKey:        0,
		LastMIDIKey:         127,
		RootKey:             ref.Key,
		ReferenceKey:        ref.Key,
		ReferencePitch:      ref.Pitch,
		FormalOctaveDegrees: 1,
		Pattern:             []int{0},
	}
}

// KeyToDegree maps a MIDI key to a scale degree. ok is false if the key
// is outside [FirstMIDIKey, LastMIDIKey] or lands on an Unmapped pattern
// entry.
func (k *KeyMap) KeyToDegree(key int) (degree int, ok bool) {
	if key < k.FirstMIDIKey || key > k.LastMIDIKey {
		return 0, false
	}
	n := len(k.Pattern)
	if n == 0 {
		return 0, false
	}
	octave, index := divMod(key-k.RootKey, n)
	entry := k.Pattern[index]
	if entry == Unmapped {
		return 0, false
	}
	return entry + octave*k.FormalOctaveDegrees, true
}

// Validate checks the structural invariants of a KeyMap: a non-empty
// pattern, a well-formed key range, and at least one mapped entry.
func (k *KeyMap) Validate() error {
	if len(k.Pattern) == 0 {
		return fmt.Errorf("keymap pattern must not be empty")
	}
	if k.FirstMIDIKey > k.LastMIDIKey {
		return fmt.Errorf("keymap key range is empty: first=%d last=%d", k.FirstMIDIKey, k.LastMIDIKey)
	}
	mapped := false
	for _, e := range k.Pattern {
		if e != Unmapped {
			mapped = true
			break
		}
	}
	if !mapped {
		return fmt.Errorf("keymap pattern has no mapped entries")
	}
	return nil
}

func divMod(a, n int) (div, mod int) {
	div = a / n
	mod = a % n
	if mod < 0 {
		mod += n
		div--
	}
	return div, mod
}
