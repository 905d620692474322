package retune

import (
	"fmt"

	"github.com/chase3718/microtune/mts"
	"github.com/chase3718/microtune/pitch"
	"github.com/chase3718/microtune/tuning"
)

// StolenNote reports that a previously sounding note had its channel
// reassigned to serve an incoming note.
type StolenNote struct {
	Key     int
	Channel int
}

// NoteOnResult is everything the caller needs to realize a note-on: which
// physical channel and 12-TET-equivalent MIDI note number to send it on,
// the retuning SysEx/RPN/pitch-bend messages to send first, and whether a
// previously sounding note was stolen to make room.
type NoteOnResult struct {
	Accepted   bool
	Channel    int
	MIDINote   int
	Retune     [][]byte
	StolenNote *StolenNote
}

// NoteOffResult reports which physical channel to release.
type NoteOffResult struct {
	Found   bool
	Channel int
}

// Scheduler is a just-in-time channel allocator. It holds one independent
// channel pool per technique group (one pool per pitch-class letter under
// Octave, a single pool otherwise), matching hardware whose scale/octave
// table is per channel: two different letters never compete for the same
// pool slot, but the same physical channel number can be active in more
// than one group's pool at once.
type Scheduler struct {
	ts        *tuning.TunedScale
	technique Technique
	policy    ClashPolicy
	channels  []int
	format    mts.Format
	bendRange float64

	pools          map[int]*pool
	channelOctaves map[int]mts.OctaveOffsets
}

// Config configures a Scheduler.
type Config struct {
	Technique           Technique
	ClashPolicy         ClashPolicy
	FirstChannel        int
	NumChannels         int
	OctaveTuningFormat  mts.Format
	PitchBendRangeSemis float64
}

// NewScheduler builds a Scheduler over the given tuned scale.
func NewScheduler(ts *tuning.TunedScale, cfg Config) (*Scheduler, error) {
	if cfg.NumChannels <= 0 {
		return nil, fmt.Errorf("retune: NumChannels must be positive, got %d", cfg.NumChannels)
	}
	bendRange := cfg.PitchBendRangeSemis
	if bendRange <= 0 {
		bendRange = mts.DefaultPitchBendRangeSemitones
	}
	channels := make([]int, cfg.NumChannels)
	for i := range channels {
		channels[i] = cfg.FirstChannel + i
	}
	return &Scheduler{
		ts:             ts,
		technique:      cfg.Technique,
		policy:         cfg.ClashPolicy,
		channels:       channels,
		format:         cfg.OctaveTuningFormat,
		bendRange:      bendRange,
		pools:          make(map[int]*pool),
		channelOctaves: make(map[int]mts.OctaveOffsets),
	}, nil
}

func (s *Scheduler) groupFor(letter int) int {
	if s.technique == Octave {
		return letter
	}
	return 0
}

func (s *Scheduler) poolFor(group int) *pool {
	p, ok := s.pools[group]
	if !ok {
		p = newPool(s.policy, s.channels)
		s.pools[group] = p
	}
	return p
}

// NoteOn allocates a channel for key and returns the retuning messages
// that must be sent before the actual Note On. If ts does not map key,
// Accepted is false and no pool state changes.
func (s *Scheduler) NoteOn(key int, velocity byte) NoteOnResult {
	p, ok := s.ts.KeyPitch(key)
	if !ok {
		return NoteOnResult{}
	}
	midiNote, letter, detune := nearestKeyLetterAndDetune(p)

	group := s.groupFor(letter)
	pl := s.poolFor(group)
	// Octave, ChannelFine and PitchBend each give a whole channel a single
	// detune (per letter, for Octave); a channel already carrying the
	// detune key needs can sound it too without retuning or stealing.
	// FullKeyboard gives every key its own independent table entry, so
	// sharing a channel is never required to realize a new key's detune.
	var compatible func(ch int) bool
	if s.technique != FullKeyboard {
		compatible = func(ch int) bool {
			existingKey, ok := pl.keyOnChannel(ch)
			if !ok {
				return false
			}
			existingPitch, ok := s.ts.KeyPitch(existingKey)
			if !ok {
				return false
			}
			_, existingLetter, existingDetune := nearestKeyLetterAndDetune(existingPitch)
			if s.technique == Octave && existingLetter != letter {
				return false
			}
			return quantize(existingDetune) == quantize(detune)
		}
	}
	channel, accepted, stolenKey, stolenChannel, stole := pl.keyPressed(key, velocity, compatible)
	if !accepted {
		return NoteOnResult{}
	}

	result := NoteOnResult{
		Accepted: true,
		Channel:  channel,
		MIDINote: midiNote,
	}
	if stole {
		result.StolenNote = &StolenNote{Key: stolenKey, Channel: stolenChannel}
	}
	result.Retune = s.retuneMessages(channel, midiNote, letter, detune, p)
	return result
}

// NoteOff releases the channel held by key, if any.
func (s *Scheduler) NoteOff(key int) NoteOffResult {
	p, ok := s.ts.KeyPitch(key)
	if !ok {
		return NoteOffResult{}
	}
	letter, _ := noteLetterAndDetune(p)
	group := s.groupFor(letter)
	channel, found := s.poolFor(group).keyReleased(key)
	return NoteOffResult{Found: found, Channel: channel}
}

// Channels returns the full set of output channels this scheduler
// partitions across, regardless of which are currently active. Callers
// use this to broadcast keyless channel-voice messages (Program Change,
// Channel Aftertouch, Control Change, Pitch Bend) to every channel in
// the partition, since those messages carry no key to route by.
func (s *Scheduler) Channels() []int {
	channels := make([]int, len(s.channels))
	copy(channels, s.channels)
	return channels
}

// ActiveChannel reports the channel currently assigned to key, if any.
func (s *Scheduler) ActiveChannel(key int) (int, bool) {
	p, ok := s.ts.KeyPitch(key)
	if !ok {
		return 0, false
	}
	letter, _ := noteLetterAndDetune(p)
	return s.poolFor(s.groupFor(letter)).findChannel(key)
}

func (s *Scheduler) retuneMessages(channel, midiNote, letter int, detune float64, p pitch.Pitch) [][]byte {
	switch s.technique {
	case FullKeyboard:
		msg, err := mts.EncodeSingleNoteTuningChange(
			[]mts.NoteTuningChange{{Key: midiNote, Pitch: p}},
			mts.Options{TuningProgram: byte(channel)},
		)
		if err != nil {
			return nil
		}
		return msg

	case Octave:
		offsets := s.channelOctaves[channel]
		offsets[letter] = detune
		s.channelOctaves[channel] = offsets
		msg := mts.EncodeScaleOctaveTuning(offsets, mts.SomeChannels(channel), s.format, mts.Options{})
		return [][]byte{msg}

	case ChannelFine:
		msgs, err := mts.EncodeChannelFineTuning(channel, detune)
		if err != nil {
			return nil
		}
		out := make([][]byte, len(msgs))
		for i, m := range msgs {
			out[i] = m
		}
		return out

	case PitchBend:
		msg, err := mts.EncodePitchBend(channel, detune/100.0, s.bendRange)
		if err != nil {
			return nil
		}
		return [][]byte{msg}
	}
	return nil
}
