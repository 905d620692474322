// Package midiio wires the retuning engine to real MIDI hardware: a
// hot-plug input watcher, an output port sender, and a checksummed
// serial-MIDI transport for hardware lacking a native USB-MIDI stack.
package midiio

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// NoteEvent is a NoteOn/NoteOff reported by a Watcher.
type NoteEvent struct {
	On       bool
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// PolyAftertouchEvent is a per-key pressure change. Unlike the other
// keyless channel-voice messages, it carries a key and so is routed the
// same way a NoteOn is, onto whichever physical channel already sounds
// that key.
type PolyAftertouchEvent struct {
	Channel  uint8
	Key      uint8
	Pressure uint8
	Raw      []byte
}

// WithChannel returns a copy of Raw with its channel nibble rewritten to
// ch, ready to send on the channel the key's note actually sounds on.
func (e PolyAftertouchEvent) WithChannel(ch uint8) []byte {
	out := append([]byte(nil), e.Raw...)
	if len(out) > 0 {
		out[0] = (out[0] & 0xF0) | (ch & 0x0F)
	}
	return out
}

// ChannelMessageEvent is a keyless channel-voice message: Program
// Change, Channel (mono) Aftertouch, Control Change, or Pitch Bend. It
// carries no key to route by, so callers broadcast it, rewriting Raw's
// channel nibble, to every output channel in the current partition.
type ChannelMessageEvent struct {
	Channel uint8
	Raw     []byte
}

// WithChannel returns a copy of Raw with its channel nibble rewritten to
// ch, ready to send on a different output channel.
func (e ChannelMessageEvent) WithChannel(ch uint8) []byte {
	out := append([]byte(nil), e.Raw...)
	if len(out) > 0 {
		out[0] = (out[0] & 0xF0) | (ch & 0x0F)
	}
	return out
}

// DefaultRescanInterval is how often Tick re-scans available input ports
// when no rescan interval is configured.
const DefaultRescanInterval = 1000 * time.Millisecond

// Watcher monitors available MIDI input ports and maintains a connection
// to a preferred device, reconnecting transparently across hot-plug and
// hot-unplug events.
//
// OnNote is called for every NoteOn/NoteOff while a device is connected.
// OnPolyAftertouch is called for per-key pressure changes, routed the
// same way as a note. OnChannelMessage is called for every other
// channel-voice message (Program Change, Channel Aftertouch, Control
// Change, Pitch Bend), which carries no key and so must be broadcast by
// the caller to every output channel in use. OnSysEx is called for
// every System Exclusive message, used to observe bulk tuning dump
// replies from hardware that echoes its tuning table. OnDisconnect is
// called (from a goroutine) when the active device is lost; callers
// should treat it as a release-everything signal.
type Watcher struct {
	mu             sync.Mutex
	drv            *rtmididrv.Driver
	inPort         drivers.In
	stopFn         func()
	connected      bool
	selectedName   string
	lastRescanAt   time.Time
	rescanInterval time.Duration

	PreferredPatterns []string
	ExcludedPatterns  []string

	OnNote           func(NoteEvent)
	OnPolyAftertouch func(PolyAftertouchEvent)
	OnChannelMessage func(ChannelMessageEvent)
	OnSysEx          func([]byte)
	OnDisconnect     func()

	log *slog.Logger
}

// NewWatcher creates a Watcher and initializes the underlying rtmidi
// driver. Call Close when done.
func NewWatcher(log *slog.Logger) (*Watcher, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midiio: rtmididrv: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		drv:               drv,
		rescanInterval:    DefaultRescanInterval,
		ExcludedPatterns:  []string{"Midi Through", "Through Port", "Dummy"},
		log:               log,
	}, nil
}

// Close shuts down the active MIDI connection and the rtmidi driver.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeConn()
	w.drv.Close()
}

// Tick should be called on a regular interval from the caller's event
// loop. It scans for devices, auto-connects to a preferred one, and
// detects disappearances.
func (w *Watcher) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if !w.lastRescanAt.IsZero() && now.Sub(w.lastRescanAt) < w.rescanInterval {
		return
	}
	w.lastRescanAt = now

	inputs := w.listInputs()

	if w.connected {
		for _, n := range inputs {
			if n == w.selectedName {
				return
			}
		}
		w.log.Warn("midiio: device disappeared", "device", w.selectedName)
		w.closeConn()
		w.lastRescanAt = time.Time{}
		if w.OnDisconnect != nil {
			go w.OnDisconnect()
		}
		return
	}

	if len(inputs) == 0 {
		return
	}
	cand, ok := w.pickPreferred(inputs)
	if !ok {
		return
	}
	if err := w.openByName(cand); err != nil {
		w.log.Error("midiio: connect failed", "device", cand, "err", err)
	}
}

// SelectedDevice returns the name of the currently connected input
// device, if any.
func (w *Watcher) SelectedDevice() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedName, w.connected
}

func (w *Watcher) listInputs() []string {
	ins, err := w.drv.Ins()
	if err != nil {
		w.log.Error("midiio: list inputs failed", "err", err)
		return nil
	}
	var names []string
	for _, in := range ins {
		name := in.String()
		excluded := false
		for _, pat := range w.ExcludedPatterns {
			if containsCI(name, pat) {
				excluded = true
				break
			}
		}
		if excluded {
			w.log.Debug("midiio: input excluded", "device", name)
			continue
		}
		names = append(names, name)
	}
	w.log.Debug("midiio: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names
}

func (w *Watcher) pickPreferred(inputs []string) (string, bool) {
	for _, pat := range w.PreferredPatterns {
		for _, name := range inputs {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func (w *Watcher) closeConn() {
	if w.stopFn != nil {
		w.stopFn()
		w.stopFn = nil
	}
	if w.inPort != nil {
		_ = w.inPort.Close()
		w.inPort = nil
	}
	w.connected = false
	w.selectedName = ""
}

func (w *Watcher) openByName(name string) error {
	ins, err := w.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("midiio: input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("midiio: open %q: %w", name, err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		var ch, key, vel, pressure, controller, value, program uint8
		var pitchRel int16
		var pitchAbs uint16
		var sysex []byte
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			w.log.Debug("midiio: note on", "ch", ch, "key", key, "vel", vel)
			if w.OnNote != nil {
				w.OnNote(NoteEvent{On: true, Channel: ch, Key: key, Velocity: vel})
			}
		case msg.GetNoteEnd(&ch, &key):
			w.log.Debug("midiio: note off", "ch", ch, "key", key)
			if w.OnNote != nil {
				w.OnNote(NoteEvent{On: false, Channel: ch, Key: key})
			}
		case msg.GetPolyAfterTouch(&ch, &key, &pressure):
			w.log.Debug("midiio: poly aftertouch", "ch", ch, "key", key, "pressure", pressure)
			if w.OnPolyAftertouch != nil {
				w.OnPolyAftertouch(PolyAftertouchEvent{Channel: ch, Key: key, Pressure: pressure, Raw: []byte(msg)})
			}
		case msg.GetControlChange(&ch, &controller, &value):
			w.log.Debug("midiio: control change", "ch", ch, "cc", controller, "value", value)
			if w.OnChannelMessage != nil {
				w.OnChannelMessage(ChannelMessageEvent{Channel: ch, Raw: []byte(msg)})
			}
		case msg.GetProgramChange(&ch, &program):
			w.log.Debug("midiio: program change", "ch", ch, "program", program)
			if w.OnChannelMessage != nil {
				w.OnChannelMessage(ChannelMessageEvent{Channel: ch, Raw: []byte(msg)})
			}
		case msg.GetAfterTouch(&ch, &pressure):
			w.log.Debug("midiio: channel aftertouch", "ch", ch, "pressure", pressure)
			if w.OnChannelMessage != nil {
				w.OnChannelMessage(ChannelMessageEvent{Channel: ch, Raw: []byte(msg)})
			}
		case msg.GetPitchBend(&ch, &pitchRel, &pitchAbs):
			w.log.Debug("midiio: pitch bend", "ch", ch)
			if w.OnChannelMessage != nil {
				w.OnChannelMessage(ChannelMessageEvent{Channel: ch, Raw: []byte(msg)})
			}
		case msg.GetSysEx(&sysex):
			if w.OnSysEx != nil {
				w.OnSysEx(sysex)
			}
		default:
			w.log.Debug("midiio: unhandled message", "msg", msg.String())
		}
	}, midi.HandleError(func(listenErr error) {
		w.log.Warn("midiio: listener error", "device", name, "err", listenErr)
		go func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.connected && w.selectedName == name {
				w.closeConn()
				w.lastRescanAt = time.Time{}
				if w.OnDisconnect != nil {
					go w.OnDisconnect()
				}
			}
		}()
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("midiio: listen %q: %w", name, err)
	}

	w.inPort = found
	w.stopFn = stop
	w.connected = true
	w.selectedName = name
	w.log.Info("midiio: connected", "device", name)
	return nil
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
