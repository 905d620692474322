// Package mts implements the MIDI Tuning Standard (MTS): SysEx encodings
// for bulk and single-note tuning dumps and for one- and two-byte
// scale/octave tuning, plus the RPN-based Channel Fine Tuning message and
// plain MIDI Pitch Bend, used as the four live-retuning techniques.
package mts

import (
	"fmt"
	"math"

	"github.com/chase3718/microtune/pitch"
)

const (
	sysExStart  = 0xF0
	sysExEnd    = 0xF7
	nonRealTime = 0x7E
	realTime    = 0x7F

	midiTuningStandard = 0x08

	subIDBulkDumpRequest               = 0x00
	subIDBulkDumpReply                 = 0x01
	subIDSingleNoteTuningChange        = 0x02
	subIDBulkDumpReplyWithBankSelect    = 0x04
	subIDScaleOctaveTuning1Byte        = 0x08
	subIDScaleOctaveTuning2Byte        = 0x09
	subIDSingleNoteTuningWithBankSelect = 0x07

	// DeviceIDBroadcast addresses every device listening on the MTS
	// channel.
	DeviceIDBroadcast = 0x7F

	u7Mask            = 0x7F
	u14UpperBound     = 16384.0
	sentinelByte byte = 0x7F
)

// Options configures the addressing fields common to every MTS SysEx
// message.
type Options struct {
	Realtime      bool
	DeviceID      byte
	TuningProgram byte
	BankNumber    byte
	WithBankSelect bool
}

func (o Options) header() byte {
	if o.Realtime {
		return realTime
	}
	return nonRealTime
}

// NoteTuningChange is one entry of a tuning dump: the MIDI key being
// retuned, and the absolute pitch it should sound at.
type NoteTuningChange struct {
	Key   int
	Pitch pitch.Pitch
}

// semitoneAndFraction maps an absolute pitch onto the nearest 12-TET
// semitone (relative to A4=440Hz, MIDI key 69) plus the signed fractional
// offset in semitones, in [-0.5, 0.5).
func semitoneAndFraction(p pitch.Pitch) (semitone int, fraction float64) {
	exact := 69.0 + 12.0*math.Log2(p.Hz()/440.0)
	nearest := math.Round(exact)
	fraction = exact - nearest
	return int(nearest), fraction
}

// encodeNoteEntry renders one 3-byte tuning entry (target semitone, msb,
// lsb) for a change, or the sentinel 7F 7F 7F if the target note falls
// outside the MIDI key range.
func encodeNoteEntry(c NoteTuningChange) [3]byte {
	semitone, fraction := semitoneAndFraction(c.Pitch)
	if fraction < 0 {
		semitone--
		fraction += 1.0
	}
	if semitone < 0 || semitone > 127 {
		return [3]byte{sentinelByte, sentinelByte, sentinelByte}
	}
	u14 := int(math.Round(fraction * u14UpperBound))
	if u14 < 0 {
		u14 = 0
	}
	if u14 > 0x3FFF {
		u14 = 0x3FFF
	}
	msb := byte(u14>>7) & u7Mask
	lsb := byte(u14) & u7Mask
	return [3]byte{byte(semitone), msb, lsb}
}

// checkKeys validates that every change targets a key in [0, 127].
func checkKeys(changes []NoteTuningChange) error {
	for _, c := range changes {
		if c.Key < 0 || c.Key > 127 {
			return fmt.Errorf("mts: key %d out of MIDI range [0, 127]", c.Key)
		}
	}
	return nil
}

// EncodeSingleNoteTuningChange renders one or more Single Note Tuning
// Change messages covering changes, batching at most 128 key entries per
// message. A batch of exactly 128 is split into two batches of 64, since
// some hardware implementations misparse a full 128-entry message.
func EncodeSingleNoteTuningChange(changes []NoteTuningChange, opts Options) ([][]byte, error) {
	if err := checkKeys(changes); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("mts: single note tuning change requires at least one entry")
	}

	var batches [][]NoteTuningChange
	for start := 0; start < len(changes); {
		remaining := len(changes) - start
		size := remaining
		if size > 128 {
			size = 128
		}
		if size == 128 {
			size = 64
		}
		batches = append(batches, changes[start:start+size])
		start += size
	}

	messages := make([][]byte, 0, len(batches))
	for _, batch := range batches {
		messages = append(messages, encodeSingleNoteTuningMessage(batch, opts))
	}
	return messages, nil
}

func encodeSingleNoteTuningMessage(batch []NoteTuningChange, opts Options) []byte {
	subID := subIDSingleNoteTuningChange
	if opts.WithBankSelect {
		subID = subIDSingleNoteTuningWithBankSelect
	}

	msg := []byte{sysExStart, opts.header(), opts.DeviceID, midiTuningStandard, byte(subID)}
	if opts.WithBankSelect {
		msg = append(msg, opts.BankNumber&u7Mask)
	}
	msg = append(msg, opts.TuningProgram&u7Mask, byte(len(batch)))
	for _, c := range batch {
		entry := encodeNoteEntry(c)
		msg = append(msg, byte(c.Key), entry[0], entry[1], entry[2])
	}
	msg = append(msg, sysExEnd)
	return msg
}

// EncodeBulkTuningDump renders a single Bulk Tuning Dump message covering
// exactly 128 key entries (every key not present in changes is encoded as
// the out-of-range sentinel), following the Full Keyboard format's fixed
// size requirement.
func EncodeBulkTuningDump(changes []NoteTuningChange, name string, opts Options) ([]byte, error) {
	if err := checkKeys(changes); err != nil {
		return nil, err
	}
	if len(name) > 16 {
		return nil, fmt.Errorf("mts: bulk dump name %q exceeds 16 characters", name)
	}

	byKey := make(map[int]NoteTuningChange, len(changes))
	for _, c := range changes {
		byKey[c.Key] = c
	}

	nameBytes := make([]byte, 16)
	copy(nameBytes, name)
	for i := len(name); i < 16; i++ {
		nameBytes[i] = ' '
	}

	msg := []byte{sysExStart, opts.header(), opts.DeviceID, midiTuningStandard, subIDBulkDumpReply, opts.TuningProgram & u7Mask}
	msg = append(msg, nameBytes...)

	var checksum byte
	for i := 2; i < len(msg); i++ {
		checksum ^= msg[i]
	}

	for key := 0; key < 128; key++ {
		var entry [3]byte
		if c, ok := byKey[key]; ok {
			entry = encodeNoteEntry(c)
		} else {
			entry = [3]byte{sentinelByte, sentinelByte, sentinelByte}
		}
		msg = append(msg, entry[0], entry[1], entry[2])
		checksum ^= entry[0] ^ entry[1] ^ entry[2]
	}

	msg = append(msg, checksum&u7Mask, sysExEnd)
	return msg, nil
}

// Format selects between the one- and two-byte Scale/Octave Tuning wire
// representations.
type Format int

const (
	OneByte Format = iota
	TwoByte
)

// Channels selects which of the 16 MIDI channels a Scale/Octave Tuning
// message applies to.
type Channels struct {
	All      bool
	Selected [16]bool
}

// AllChannels selects every MIDI channel.
func AllChannels() Channels { return Channels{All: true} }

// SomeChannels selects exactly the given zero-based channel numbers.
func SomeChannels(channels ...int) Channels {
	c := Channels{}
	for _, ch := range channels {
		if ch >= 0 && ch < 16 {
			c.Selected[ch] = true
		}
	}
	return c
}

// bitmap renders the 3-byte channel selection, high-row byte first:
// byte 0 carries channels 14-15, byte 1 carries channels 7-13, byte 2
// carries channels 0-6.
func (c Channels) bitmap() [3]byte {
	var bitmap [3]byte
	set := func(ch int) {
		row := ch / 7
		bit := ch % 7
		bitmap[2-row] |= 1 << bit
	}
	if c.All {
		for ch := 0; ch < 16; ch++ {
			set(ch)
		}
	} else {
		for ch := 0; ch < 16; ch++ {
			if c.Selected[ch] {
				set(ch)
			}
		}
	}
	return bitmap
}

// OctaveOffsets holds one signed per-note-letter offset (C through B, 12
// entries) for Scale/Octave Tuning, in cents.
type OctaveOffsets [12]float64

// EncodeScaleOctaveTuning renders a Scale/Octave Tuning 1-byte or 2-byte
// message. 1-byte offsets are 1 cent per unit, centered at 0x40 and
// clamped to -64..+63 cents; 2-byte offsets are clamped to +/-100 cents.
func EncodeScaleOctaveTuning(offsets OctaveOffsets, channels Channels, format Format, opts Options) []byte {
	bitmap := channels.bitmap()
	var subID byte
	var payload []byte

	switch format {
	case OneByte:
		subID = subIDScaleOctaveTuning1Byte
		for _, cents := range offsets {
			v := int(math.Round(cents)) + 64
			if v < 0 {
				v = 0
			}
			if v > 127 {
				v = 127
			}
			payload = append(payload, byte(v))
		}
	case TwoByte:
		subID = subIDScaleOctaveTuning2Byte
		for _, cents := range offsets {
			frac := cents / 100.0
			v := int(math.Round(frac*8192)) + 8192
			if v < 0 {
				v = 0
			}
			if v > 0x3FFF {
				v = 0x3FFF
			}
			payload = append(payload, byte(v>>7)&u7Mask, byte(v)&u7Mask)
		}
	}

	msg := []byte{sysExStart, opts.header(), opts.DeviceID, midiTuningStandard, subID}
	msg = append(msg, bitmap[0], bitmap[1], bitmap[2])
	msg = append(msg, payload...)
	msg = append(msg, sysExEnd)
	return msg
}

// ChannelMessage is a 3-byte (or, for SysEx, variable-length) MIDI
// message ready to write to a transport.
type ChannelMessage []byte

// EncodeChannelFineTuning renders the four Registered Parameter Number
// messages implementing Channel Fine Tuning (RPN 0,1) for detune, in
// cents, within +/-100 cents.
func EncodeChannelFineTuning(channel int, detuneCents float64) ([]ChannelMessage, error) {
	if channel < 0 || channel > 15 {
		return nil, fmt.Errorf("mts: channel %d out of range [0, 15]", channel)
	}
	if detuneCents < -100 || detuneCents > 100 {
		return nil, fmt.Errorf("mts: channel fine tuning detune %.3fc out of range [-100, 100]", detuneCents)
	}

	frac := detuneCents / 100.0
	v := int(math.Round(frac*8192)) + 8192
	if v < 0 {
		v = 0
	}
	if v > 0x3FFF {
		v = 0x3FFF
	}
	msb := byte(v>>7) & u7Mask
	lsb := byte(v) & u7Mask

	status := byte(0xB0) | byte(channel)
	return []ChannelMessage{
		{status, 0x65, 0x00},
		{status, 0x64, 0x01},
		{status, 0x06, msb},
		{status, 0x26, lsb},
	}, nil
}

// ResetRPN renders one control-change message setting the RPN MSB
// (CC 101) to 127, the null selection, conventionally sent after a
// parameter update so later data-entry messages are not misinterpreted.
// The RPN LSB (CC 100) is not sent.
func ResetRPN(channel int) ChannelMessage {
	status := byte(0xB0) | byte(channel&0x0F)
	return ChannelMessage{status, 0x65, 0x7F}
}

// DefaultPitchBendRangeSemitones is the MIDI default pitch-bend sensitivity.
const DefaultPitchBendRangeSemitones = 2.0

// EncodePitchBend renders a Pitch Bend message bending channel by
// semitones, given the channel's configured bend range.
func EncodePitchBend(channel int, semitones, bendRangeSemitones float64) (ChannelMessage, error) {
	if channel < 0 || channel > 15 {
		return nil, fmt.Errorf("mts: channel %d out of range [0, 15]", channel)
	}
	if bendRangeSemitones <= 0 {
		return nil, fmt.Errorf("mts: pitch bend range must be positive, got %v", bendRangeSemitones)
	}
	frac := semitones / bendRangeSemitones
	if frac < -1 || frac > 1 {
		return nil, fmt.Errorf("mts: pitch bend of %.3f semitones exceeds range +/-%.3f", semitones, bendRangeSemitones)
	}
	v := int(math.Round(frac*8192)) + 8192
	if v < 0 {
		v = 0
	}
	if v > 0x3FFF {
		v = 0x3FFF
	}
	msb := byte(v>>7) & u7Mask
	lsb := byte(v) & u7Mask
	status := byte(0xE0) | byte(channel)
	return ChannelMessage{status, lsb, msb}, nil
}
