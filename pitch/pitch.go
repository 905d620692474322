// Package pitch represents absolute frequencies and the reference pitch
// anchoring used to translate between abstract scale degrees and real Hz
// values.
package pitch

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chase3718/microtune/ratio"
)

// Pitch is an absolute frequency in Hz.
type Pitch struct {
	hz float64
}

// FromHz builds a Pitch from a frequency in Hz. Panics if hz is not
// finite and positive.
func FromHz(hz float64) Pitch {
	if !(hz > 0) || math.IsInf(hz, 1) {
		panic(fmt.Sprintf("pitch must be a positive frequency but was %v Hz", hz))
	}
	return Pitch{hz: hz}
}

// Hz returns the frequency in Hz.
func (p Pitch) Hz() float64 { return p.hz }

// Times returns the pitch obtained by multiplying p by a ratio.
func (p Pitch) Times(r ratio.Ratio) Pitch {
	return Pitch{hz: p.hz * r.Float()}
}

// DividedBy returns the pitch obtained by dividing p by a ratio.
func (p Pitch) DividedBy(r ratio.Ratio) Pitch {
	return Pitch{hz: p.hz / r.Float()}
}

// RatioTo returns the ratio between p and other: p.RatioTo(other).Float()
// == other.Hz()/p.Hz().
func (p Pitch) RatioTo(other Pitch) ratio.Ratio {
	return ratio.FromFloat(other.hz / p.hz)
}

// String renders the pitch as e.g. "440.0000Hz".
func (p Pitch) String() string {
	return strconv.FormatFloat(p.hz, 'f', 4, 64) + "Hz"
}

// Parse parses a pitch literal of the form "<float>Hz" (case-insensitive
// suffix), e.g. "440Hz" or "261.625565hz".
func Parse(s string) (Pitch, error) {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	if !strings.HasSuffix(lower, "hz") {
		return Pitch{}, fmt.Errorf("invalid pitch %q: expected a trailing Hz unit, e.g. 440Hz", s)
	}
	numPart := strings.TrimSpace(trimmed[:len(trimmed)-2])
	f, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid pitch %q: %w", s, err)
	}
	if !(f > 0) {
		return Pitch{}, fmt.Errorf("invalid pitch %q: must be a positive frequency", s)
	}
	return Pitch{hz: f}, nil
}

// Reference anchors a scale degree (or MIDI key) to an absolute pitch. It
// is the bridge between the purely relative world of ratio/scale and
// concrete Hz values used by tuning and MTS.
type Reference struct {
	Key   int
	Pitch Pitch
}

// NewReference builds a Reference at the given key/pitch anchor.
func NewReference(key int, p Pitch) Reference {
	return Reference{Key: key, Pitch: p}
}

// DefaultReference is the conventional concert pitch anchor: MIDI key 69
// (A4) at 440Hz.
func DefaultReference() Reference {
	return Reference{Key: 69, Pitch: FromHz(440.0)}
}

// PitchOfKey returns the pitch of key assuming 12-TET steps away from the
// reference; useful as the degree-independent baseline before a scale's
// own step sizes are applied.
func (r Reference) PitchOfKey(key int) Pitch {
	steps := float64(key - r.Key)
	return r.Pitch.Times(ratio.FromSemitones(steps))
}
