package midiio

import (
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Output wraps a single MIDI output port, exposing raw byte sends for
// channel-voice messages and SysEx dumps produced by the mts package.
type Output struct {
	port drivers.Out
	log  *slog.Logger
}

// OpenOutput opens the first output port whose name contains pattern
// (case-insensitive), or the only output port if pattern is empty and
// exactly one exists.
func OpenOutput(pattern string, log *slog.Logger) (*Output, error) {
	if log == nil {
		log = slog.Default()
	}
	outs := midi.GetOutPorts()
	var chosen drivers.Out
	if pattern == "" {
		if len(outs) != 1 {
			return nil, fmt.Errorf("midiio: no output pattern given and %d output ports exist", len(outs))
		}
		chosen = outs[0]
	} else {
		for _, out := range outs {
			if containsCI(out.String(), pattern) {
				chosen = out
				break
			}
		}
		if chosen == nil {
			return nil, fmt.Errorf("midiio: no output port matching %q", pattern)
		}
	}
	if err := chosen.Open(); err != nil {
		return nil, fmt.Errorf("midiio: open output %q: %w", chosen.String(), err)
	}
	log.Info("midiio: output connected", "device", chosen.String())
	return &Output{port: chosen, log: log}, nil
}

// Send writes a raw MIDI message (channel-voice bytes or a complete
// F0..F7 SysEx frame) to the output port.
func (o *Output) Send(data []byte) error {
	if err := o.port.Send(data); err != nil {
		return fmt.Errorf("midiio: send: %w", err)
	}
	return nil
}

// NoteOn writes a Note On message.
func (o *Output) NoteOn(channel, key, velocity uint8) error {
	return o.Send(midi.NoteOn(channel, key, velocity))
}

// NoteOff writes a Note Off message.
func (o *Output) NoteOff(channel, key uint8) error {
	return o.Send(midi.NoteOff(channel, key))
}

// Close closes the output port.
func (o *Output) Close() error {
	return o.port.Close()
}
