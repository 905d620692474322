// Command microtune-synth is a minimal opaque MIDI sink used to exercise
// the retuning engine without a real synthesizer attached: it opens an
// input port, logs every Note On/Off, poly aftertouch, keyless
// channel-voice message, and MIDI Tuning Standard SysEx it receives,
// and produces no sound of its own.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/chase3718/microtune/midiio"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	inPattern := flag.String("in", "", "input device name pattern (default: the only one present)")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	watcher, err := midiio.NewWatcher(logger)
	if err != nil {
		logger.Error("synth: failed to start MIDI watcher", "err", err)
		os.Exit(1)
	}
	defer watcher.Close()
	watcher.PreferredPatterns = []string{*inPattern}

	watcher.OnNote = func(ev midiio.NoteEvent) {
		if ev.On {
			logger.Info("synth: note on", "ch", ev.Channel, "key", ev.Key, "vel", ev.Velocity)
		} else {
			logger.Info("synth: note off", "ch", ev.Channel, "key", ev.Key)
		}
	}
	watcher.OnPolyAftertouch = func(ev midiio.PolyAftertouchEvent) {
		logger.Info("synth: poly aftertouch", "ch", ev.Channel, "key", ev.Key, "pressure", ev.Pressure)
	}
	watcher.OnChannelMessage = func(ev midiio.ChannelMessageEvent) {
		logger.Info("synth: channel message", "ch", ev.Channel, "bytes", len(ev.Raw))
	}
	watcher.OnSysEx = func(data []byte) {
		logger.Info("synth: sysex", "bytes", len(data))
	}
	watcher.OnDisconnect = func() {
		logger.Warn("synth: input disconnected")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	logger.Info("synth: listening")
	for {
		select {
		case <-sigCh:
			logger.Info("synth: shutting down")
			return
		case <-ticker.C:
			watcher.Tick()
		}
	}
}
