package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/chase3718/microtune/keymap"
	"github.com/chase3718/microtune/midiio"
	"github.com/chase3718/microtune/mts"
	"github.com/chase3718/microtune/pitch"
	"github.com/chase3718/microtune/retune"
	"github.com/chase3718/microtune/tuning"
)

var (
	liveRefNote      int
	liveRefHz        float64
	liveInDevice     string
	liveOutDevice    string
	liveFirstChannel int
	liveNumChannels  int
	liveClash        string
	liveOctaveFormat string
	liveBendRange    float64
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Retune a synthesizer live from incoming MIDI",
}

var liveAotCmd = &cobra.Command{
	Use:   "aot <technique> <scale-expr>",
	Short: "Ahead-of-time: statically partition the scale across channels once at startup",
	Args:  cobra.ExactArgs(2),
	RunE:  runLiveAot,
}

var liveJitCmd = &cobra.Command{
	Use:   "jit <technique> <scale-expr>",
	Short: "Just-in-time: assign channels to notes as they are pressed",
	Args:  cobra.ExactArgs(2),
	RunE:  runLiveJit,
}

func init() {
	for _, c := range []*cobra.Command{liveAotCmd, liveJitCmd} {
		c.Flags().IntVar(&liveRefNote, "ref-note", 69, "MIDI key the scale's root is anchored to")
		c.Flags().Float64Var(&liveRefHz, "ref-hz", 440.0, "frequency, in Hz, of the reference key")
		c.Flags().StringVar(&liveInDevice, "in", "", "input MIDI device name pattern (default: the only one present)")
		c.Flags().StringVar(&liveOutDevice, "out", "", "output MIDI device name pattern (default: the only one present)")
		c.Flags().IntVar(&liveFirstChannel, "first-channel", 0, "first zero-based output channel to use")
		c.Flags().StringVar(&liveOctaveFormat, "octave-format", "2-byte", "scale/octave tuning format: 1-byte or 2-byte")
		c.Flags().Float64Var(&liveBendRange, "bend-range", mts.DefaultPitchBendRangeSemitones, "pitch bend range in semitones, for the pitch-bend technique")
	}
	liveAotCmd.Flags().IntVar(&liveNumChannels, "num-channels", 16, "number of output channels to partition across")
	liveJitCmd.Flags().IntVar(&liveNumChannels, "num-channels", 8, "number of output channels in the JIT pool")
	liveJitCmd.Flags().StringVar(&liveClash, "clash", "steal-oldest", "clash policy: steal-oldest, steal-quietest, drop-new, sound-untuned")

	liveCmd.AddCommand(liveAotCmd)
	liveCmd.AddCommand(liveJitCmd)
}

func parseTechnique(s string) (retune.Technique, error) {
	switch s {
	case "full", "full-keyboard":
		return retune.FullKeyboard, nil
	case "octave":
		return retune.Octave, nil
	case "channel-fine":
		return retune.ChannelFine, nil
	case "pitch-bend":
		return retune.PitchBend, nil
	default:
		return 0, fmt.Errorf("unknown technique %q", s)
	}
}

func parseOctaveFormat(s string) (mts.Format, error) {
	switch s {
	case "1-byte":
		return mts.OneByte, nil
	case "2-byte":
		return mts.TwoByte, nil
	default:
		return 0, fmt.Errorf("unknown octave tuning format %q", s)
	}
}

func buildTunedScale(scaleExpr string) (*tuning.TunedScale, error) {
	s, err := parseScaleExpr(scaleExpr)
	if err != nil {
		return nil, err
	}
	km := keymap.Default()
	km.RootKey = liveRefNote
	km.ReferenceKey = liveRefNote
	km.ReferencePitch = pitch.FromHz(liveRefHz)
	return tuning.New(s, km), nil
}

func runLiveAot(cmd *cobra.Command, args []string) error {
	technique, err := parseTechnique(args[0])
	if err != nil {
		return err
	}
	ts, err := buildTunedScale(args[1])
	if err != nil {
		return err
	}
	plan, err := retune.BuildPlan(ts, technique, liveFirstChannel, liveNumChannels)
	if err != nil {
		return err
	}

	out, err := midiio.OpenOutput(liveOutDevice, logger)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := sendAotChannelPlans(out, plan); err != nil {
		return err
	}

	byKey := make(map[int]retune.KeyAssignment, len(plan.Assignments))
	for _, a := range plan.Assignments {
		byKey[a.Key] = a
	}

	watcher, err := midiio.NewWatcher(logger)
	if err != nil {
		return err
	}
	defer watcher.Close()
	watcher.PreferredPatterns = []string{liveInDevice}

	watcher.OnNote = func(ev midiio.NoteEvent) {
		assignment, ok := byKey[int(ev.Key)]
		if !ok {
			return
		}
		if ev.On {
			_ = out.NoteOn(uint8(assignment.Channel), ev.Key, ev.Velocity)
		} else {
			_ = out.NoteOff(uint8(assignment.Channel), ev.Key)
		}
	}

	watcher.OnPolyAftertouch = func(ev midiio.PolyAftertouchEvent) {
		assignment, ok := byKey[int(ev.Key)]
		if !ok {
			return
		}
		_ = out.Send(ev.WithChannel(uint8(assignment.Channel)))
	}

	watcher.OnChannelMessage = func(ev midiio.ChannelMessageEvent) {
		for _, cp := range plan.Channels {
			_ = out.Send(ev.WithChannel(uint8(cp.Channel)))
		}
	}

	return runEventLoop(watcher)
}

func sendAotChannelPlans(out *midiio.Output, plan *retune.Plan) error {
	switch plan.Technique {
	case retune.FullKeyboard:
		var changes []mts.NoteTuningChange
		for _, a := range plan.Assignments {
			changes = append(changes, mts.NoteTuningChange{Key: a.Key, Pitch: a.Pitch})
		}
		msgs, err := mts.EncodeSingleNoteTuningChange(changes, mts.Options{})
		if err != nil {
			return err
		}
		for _, m := range msgs {
			if err := out.Send(m); err != nil {
				return err
			}
		}

	case retune.Octave:
		for _, cp := range plan.Channels {
			var offsets mts.OctaveOffsets
			for letter, cents := range cp.LetterDetune {
				offsets[letter] = cents
			}
			format, err := parseOctaveFormat(liveOctaveFormat)
			if err != nil {
				return err
			}
			msg := mts.EncodeScaleOctaveTuning(offsets, mts.SomeChannels(cp.Channel), format, mts.Options{})
			if err := out.Send(msg); err != nil {
				return err
			}
		}

	case retune.ChannelFine:
		for _, cp := range plan.Channels {
			msgs, err := mts.EncodeChannelFineTuning(cp.Channel, cp.Detune)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				if err := out.Send(m); err != nil {
					return err
				}
			}
		}

	case retune.PitchBend:
		for _, cp := range plan.Channels {
			msg, err := mts.EncodePitchBend(cp.Channel, cp.Detune/100.0, liveBendRange)
			if err != nil {
				return err
			}
			if err := out.Send(msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func runLiveJit(cmd *cobra.Command, args []string) error {
	technique, err := parseTechnique(args[0])
	if err != nil {
		return err
	}
	policy, err := retune.ParseClashPolicy(liveClash)
	if err != nil {
		return err
	}
	format, err := parseOctaveFormat(liveOctaveFormat)
	if err != nil {
		return err
	}
	ts, err := buildTunedScale(args[1])
	if err != nil {
		return err
	}

	scheduler, err := retune.NewScheduler(ts, retune.Config{
		Technique:           technique,
		ClashPolicy:         policy,
		FirstChannel:        liveFirstChannel,
		NumChannels:         liveNumChannels,
		OctaveTuningFormat:  format,
		PitchBendRangeSemis: liveBendRange,
	})
	if err != nil {
		return err
	}

	out, err := midiio.OpenOutput(liveOutDevice, logger)
	if err != nil {
		return err
	}
	defer out.Close()

	watcher, err := midiio.NewWatcher(logger)
	if err != nil {
		return err
	}
	defer watcher.Close()
	watcher.PreferredPatterns = []string{liveInDevice}

	sounding := make(map[int]int) // input key -> MIDI note its Note On was sent on
	watcher.OnNote = func(ev midiio.NoteEvent) {
		if ev.On {
			res := scheduler.NoteOn(int(ev.Key), ev.Velocity)
			if !res.Accepted {
				return
			}
			if res.StolenNote != nil && policy != retune.SoundUntuned {
				_ = out.NoteOff(uint8(res.StolenNote.Channel), uint8(sounding[res.StolenNote.Key]))
				delete(sounding, res.StolenNote.Key)
			}
			for _, msg := range res.Retune {
				_ = out.Send(msg)
			}
			sounding[int(ev.Key)] = res.MIDINote
			_ = out.NoteOn(uint8(res.Channel), uint8(res.MIDINote), ev.Velocity)
		} else {
			res := scheduler.NoteOff(int(ev.Key))
			if res.Found {
				_ = out.NoteOff(uint8(res.Channel), uint8(sounding[int(ev.Key)]))
				delete(sounding, int(ev.Key))
			} else {
				logger.Debug("live: note off without a matching note on", "key", ev.Key)
			}
		}
	}

	watcher.OnPolyAftertouch = func(ev midiio.PolyAftertouchEvent) {
		channel, ok := scheduler.ActiveChannel(int(ev.Key))
		if !ok {
			return
		}
		_ = out.Send(ev.WithChannel(uint8(channel)))
	}

	watcher.OnChannelMessage = func(ev midiio.ChannelMessageEvent) {
		for _, ch := range scheduler.Channels() {
			_ = out.Send(ev.WithChannel(uint8(ch)))
		}
	}

	return runEventLoop(watcher)
}

func runEventLoop(watcher *midiio.Watcher) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			logger.Info("live: shutting down")
			return nil
		case <-ticker.C:
			watcher.Tick()
		}
	}
}
