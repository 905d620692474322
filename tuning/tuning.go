// Package tuning composes a scale and a key map into a TunedScale: the
// function from MIDI key to absolute pitch (undefined for unmapped keys),
// and its approximate inverse from pitch back to the nearest key.
package tuning

import (
	"github.com/chase3718/microtune/keymap"
	"github.com/chase3718/microtune/pitch"
	"github.com/chase3718/microtune/ratio"
	"github.com/chase3718/microtune/scale"
)

// TunedScale is a Scale anchored into absolute pitch space through a
// KeyMap.
type TunedScale struct {
	Scale  *scale.Scale
	KeyMap *keymap.KeyMap
}

// New builds a TunedScale from a scale and key map.
func New(s *scale.Scale, k *keymap.KeyMap) *TunedScale {
	return &TunedScale{Scale: s, KeyMap: k}
}

// KeyPitch returns the absolute pitch of a MIDI key, and whether the key
// is mapped at all (per the key map's pattern and range).
func (t *TunedScale) KeyPitch(key int) (pitch.Pitch, bool) {
	degree, ok := t.KeyMap.KeyToDegree(key)
	if !ok {
		return pitch.Pitch{}, false
	}
	refDegree, refOK := t.KeyMap.KeyToDegree(t.KeyMap.ReferenceKey)
	relativeDegree := degree
	if refOK {
		relativeDegree = degree - refDegree
	}
	r := t.Scale.DegreeToRatio(relativeDegree)
	return t.KeyMap.ReferencePitch.Times(r), true
}

// FindNearestKey is the approximate inverse of KeyPitch: given an
// absolute pitch, it returns the mapped MIDI key whose pitch is closest
// to it, plus the signed deviation of the target from that key's pitch
// (the ratio by which the target exceeds the found key's actual pitch).
func (t *TunedScale) FindNearestKey(target pitch.Pitch) (key int, deviation ratio.Ratio, found bool) {
	bestKey := -1
	var bestAbsCents float64
	var bestDeviation ratio.Ratio

	for k := t.KeyMap.FirstMIDIKey; k <= t.KeyMap.LastMIDIKey; k++ {
		p, ok := t.KeyPitch(k)
		if !ok {
			continue
		}
		dev := p.RatioTo(target)
		absCents := dev.Cents()
		if absCents < 0 {
			absCents = -absCents
		}
		if bestKey == -1 || absCents < bestAbsCents {
			bestKey = k
			bestAbsCents = absCents
			bestDeviation = dev
		}
	}

	if bestKey == -1 {
		return 0, ratio.Unison(), false
	}
	return bestKey, bestDeviation, true
}
