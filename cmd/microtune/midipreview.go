package main

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/chase3718/microtune/mts"
	"github.com/chase3718/microtune/pitch"
	"github.com/chase3718/microtune/tuning"
)

const (
	previewTicksPerQuarter = 480
	previewChannel         = 0
)

// writePreviewSMF renders every mapped key in [lo, hi] as an eighth note
// on the nearest 12-TET MIDI note, followed by a quarter-note rest, each
// preceded by a Pitch Bend message carrying the key's deviation from that
// 12-TET note so the file can be auditioned in any DAW without live
// MTS-capable hardware. Keys whose nearest 12-TET note lies outside
// 0..127 are skipped.
func writePreviewSMF(ts *tuning.TunedScale, lo, hi int, path string) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(previewTicksPerQuarter)

	var track smf.Track
	trackName := []byte("microtune scale preview")
	trackNameMeta := append([]byte{0xFF, 0x03, byte(len(trackName))}, trackName...)
	track.Add(0, smf.Message(trackNameMeta))

	ref := pitch.DefaultReference()
	var beat uint32
	for key := lo; key <= hi; key++ {
		p, ok := ts.KeyPitch(key)
		if !ok {
			continue
		}
		exact := float64(ref.Key) + ref.Pitch.RatioTo(p).Semitones()
		nearest := int(math.Round(exact))
		if nearest < 0 || nearest > 127 {
			continue
		}
		semis := exact - float64(nearest)
		if semis > mts.DefaultPitchBendRangeSemitones {
			semis = mts.DefaultPitchBendRangeSemitones
		} else if semis < -mts.DefaultPitchBendRangeSemitones {
			semis = -mts.DefaultPitchBendRangeSemitones
		}
		bend, err := mts.EncodePitchBend(previewChannel, semis, mts.DefaultPitchBendRangeSemitones)
		if err != nil {
			return fmt.Errorf("encode pitch bend for key %d: %w", key, err)
		}

		delta := uint32(0)
		if beat > 0 {
			delta = previewTicksPerQuarter
		}
		track.Add(delta, smf.Message(bend))
		track.Add(0, midi.NoteOn(previewChannel, uint8(nearest), 100))
		track.Add(previewTicksPerQuarter/2, midi.NoteOff(previewChannel, uint8(nearest)))
		beat++
	}
	track.Add(previewTicksPerQuarter, smf.Message(mts.ResetRPN(previewChannel)))
	track.Close(0)

	if err := s.Add(track); err != nil {
		return fmt.Errorf("add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
