// Package retune implements the two live-retuning strategies: an
// ahead-of-time Channel-Partition Planner that statically assigns every
// mapped key a MIDI output channel, and a just-in-time Scheduler that
// assigns channels to notes as they are pressed, applying a clash policy
// when the channel pool runs out.
package retune

import (
	"fmt"
	"math"
	"sort"

	"github.com/chase3718/microtune/pitch"
	"github.com/chase3718/microtune/tuning"
)

// Technique selects which MTS mechanism is used to apply detuning, which
// in turn determines how much independent detuning a single MIDI channel
// can carry at once.
type Technique int

const (
	// FullKeyboard gives every key its own detune via Single Note Tuning
	// Change; a channel has unlimited per-key detuning capacity.
	FullKeyboard Technique = iota
	// Octave gives each of the 12 note letters its own detune via Scale/
	// Octave Tuning; a channel can carry 12 independent detune values,
	// one per letter, shared by every octave.
	Octave
	// ChannelFine gives the whole channel a single detune via RPN
	// Channel Fine Tuning.
	ChannelFine
	// PitchBend gives the whole channel a single detune via Pitch Bend.
	PitchBend
)

func (t Technique) String() string {
	switch t {
	case FullKeyboard:
		return "full-keyboard"
	case Octave:
		return "octave"
	case ChannelFine:
		return "channel-fine"
	case PitchBend:
		return "pitch-bend"
	default:
		return "unknown"
	}
}

const centsQuantum = 0.5

// noteLetterAndDetune returns the pitch class (0=C .. 11=B) and the
// signed cents deviation of p from the nearest 12-TET pitch of that
// class, relative to concert pitch A4=440Hz. nearestKeyLetterAndDetune
// additionally returns the nearest 12-TET MIDI key number itself.
func noteLetterAndDetune(p pitch.Pitch) (letter int, detuneCents float64) {
	_, letter, detuneCents = nearestKeyLetterAndDetune(p)
	return letter, detuneCents
}

func nearestKeyLetterAndDetune(p pitch.Pitch) (key, letter int, detuneCents float64) {
	exact := 69.0 + 12.0*math.Log2(p.Hz()/440.0)
	nearest := math.Round(exact)
	detuneCents = (exact - nearest) * 100.0
	key = int(nearest)
	letter = ((key % 12) + 12) % 12
	return key, letter, detuneCents
}

func quantize(cents float64) float64 {
	return math.Round(cents/centsQuantum) * centsQuantum
}

// KeyAssignment is the static result of planning one mapped key.
type KeyAssignment struct {
	Key     int
	Channel int
	Pitch   pitch.Pitch
}

// ChannelPlan is the detuning a single output channel must be configured
// with to serve every key assigned to it.
type ChannelPlan struct {
	Channel int
	// LetterDetune holds the per-letter detune, in cents, used by the
	// Octave technique. Unused letters are absent from the map.
	LetterDetune map[int]float64
	// Detune is the single whole-channel detune, in cents, used by the
	// ChannelFine and PitchBend techniques.
	Detune float64
}

// Plan is the complete ahead-of-time channel partition for a tuned scale.
type Plan struct {
	Technique   Technique
	Assignments []KeyAssignment
	Channels    []ChannelPlan
}

// BuildPlan partitions every key mapped by ts across channels
// [firstChannel, firstChannel+numChannels), minimizing the number of
// channels used subject to the detuning capacity of technique. Returns an
// error if numChannels is insufficient to carry every distinct detune
// requirement.
func BuildPlan(ts *tuning.TunedScale, technique Technique, firstChannel, numChannels int) (*Plan, error) {
	if numChannels <= 0 {
		return nil, fmt.Errorf("retune: numChannels must be positive, got %d", numChannels)
	}

	type mappedKey struct {
		key    int
		p      pitch.Pitch
		letter int
		detune float64
	}

	var keys []mappedKey
	for k := ts.KeyMap.FirstMIDIKey; k <= ts.KeyMap.LastMIDIKey; k++ {
		p, ok := ts.KeyPitch(k)
		if !ok {
			continue
		}
		letter, detune := noteLetterAndDetune(p)
		keys = append(keys, mappedKey{key: k, p: p, letter: letter, detune: quantize(detune)})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].key < keys[j].key })

	plan := &Plan{Technique: technique}
	channelLetterDetune := make([]map[int]float64, 0, numChannels)
	channelDetune := make([]float64, 0, numChannels)
	channelUsed := make([]bool, 0, numChannels)

	assignChannel := func() (int, error) {
		idx := len(channelUsed)
		if idx >= numChannels {
			return 0, fmt.Errorf("retune: %d channels are not enough to carry every distinct detune for technique %v", numChannels, technique)
		}
		channelUsed = append(channelUsed, true)
		channelLetterDetune = append(channelLetterDetune, map[int]float64{})
		channelDetune = append(channelDetune, 0)
		return idx, nil
	}

	for _, mk := range keys {
		var chosen int = -1

		switch technique {
		case FullKeyboard:
			if len(channelUsed) == 0 {
				idx, err := assignChannel()
				if err != nil {
					return nil, err
				}
				chosen = idx
			} else {
				chosen = 0
			}

		case Octave:
			for idx, letters := range channelLetterDetune {
				if existing, ok := letters[mk.letter]; !ok || existing == mk.detune {
					chosen = idx
					letters[mk.letter] = mk.detune
					break
				}
			}
			if chosen == -1 {
				idx, err := assignChannel()
				if err != nil {
					return nil, err
				}
				channelLetterDetune[idx][mk.letter] = mk.detune
				chosen = idx
			}

		case ChannelFine, PitchBend:
			for idx, used := range channelUsed {
				if !used {
					continue
				}
				if channelDetune[idx] == mk.detune {
					chosen = idx
					break
				}
			}
			if chosen == -1 {
				idx, err := assignChannel()
				if err != nil {
					return nil, err
				}
				channelDetune[idx] = mk.detune
				chosen = idx
			}
		}

		plan.Assignments = append(plan.Assignments, KeyAssignment{
			Key:     mk.key,
			Channel: firstChannel + chosen,
			Pitch:   mk.p,
		})
	}

	for idx := range channelUsed {
		cp := ChannelPlan{Channel: firstChannel + idx}
		if technique == Octave {
			cp.LetterDetune = channelLetterDetune[idx]
		} else {
			cp.Detune = channelDetune[idx]
		}
		plan.Channels = append(plan.Channels, cp)
	}

	return plan, nil
}
