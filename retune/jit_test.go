package retune

import (
	"testing"

	"github.com/chase3718/microtune/keymap"
	"github.com/chase3718/microtune/mts"
	"github.com/chase3718/microtune/ratio"
	"github.com/chase3718/microtune/scale"
	"github.com/chase3718/microtune/tuning"
)

func build12TETScheduler(t *testing.T, cfg Config) *Scheduler {
	s, err := scale.NewEqualDivision(12, ratio.Octave())
	if err != nil {
		t.Fatal(err)
	}
	km := keymap.Default()
	km.FirstMIDIKey, km.LastMIDIKey = 60, 71
	ts := tuning.New(s, km)
	sched, err := NewScheduler(ts, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sched
}

func TestSchedulerNoteOnAcceptsMappedKey(t *testing.T) {
	sched := build12TETScheduler(t, Config{Technique: FullKeyboard, ClashPolicy: DropNew, NumChannels: 4})
	res := sched.NoteOn(69, 100)
	if !res.Accepted {
		t.Fatalf("expected note-on to be accepted")
	}
	if res.MIDINote != 69 {
		t.Fatalf("MIDINote = %d, want 69", res.MIDINote)
	}
	if len(res.Retune) == 0 {
		t.Fatalf("expected at least one retune message")
	}
}

func TestSchedulerNoteOnRejectsUnmappedKey(t *testing.T) {
	sched := build12TETScheduler(t, Config{Technique: FullKeyboard, ClashPolicy: DropNew, NumChannels: 4})
	res := sched.NoteOn(10, 100)
	if res.Accepted {
		t.Fatalf("expected note-on outside key range to be rejected")
	}
}

func TestSchedulerDropNewRejectsWhenFull(t *testing.T) {
	sched := build12TETScheduler(t, Config{Technique: FullKeyboard, ClashPolicy: DropNew, NumChannels: 1})
	if !sched.NoteOn(60, 100).Accepted {
		t.Fatalf("first note should be accepted")
	}
	if sched.NoteOn(61, 100).Accepted {
		t.Fatalf("second note should be rejected under drop-new with one channel")
	}
}

func TestSchedulerNoteOffReleasesChannel(t *testing.T) {
	sched := build12TETScheduler(t, Config{Technique: FullKeyboard, ClashPolicy: DropNew, NumChannels: 1})
	sched.NoteOn(60, 100)
	off := sched.NoteOff(60)
	if !off.Found {
		t.Fatalf("expected note-off to find the active channel")
	}
	if !sched.NoteOn(61, 100).Accepted {
		t.Fatalf("channel should be free for a new note after note-off")
	}
}

func TestSchedulerOctaveUsesIndependentPoolsPerLetter(t *testing.T) {
	sched := build12TETScheduler(t, Config{
		Technique: Octave, ClashPolicy: DropNew, NumChannels: 1, OctaveTuningFormat: mts.OneByte,
	})
	// C and C# are different letters; each gets its own independent pool,
	// so both can be active on channel 0 at once even with NumChannels=1.
	resC := sched.NoteOn(60, 100)
	resCsharp := sched.NoteOn(61, 100)
	if !resC.Accepted || !resCsharp.Accepted {
		t.Fatalf("both distinct-letter notes should be accepted on independent pools")
	}
}

func TestSchedulerStealOldestReportsStolenNote(t *testing.T) {
	sched := build12TETScheduler(t, Config{Technique: FullKeyboard, ClashPolicy: StealOldest, NumChannels: 1})
	sched.NoteOn(60, 100)
	res := sched.NoteOn(61, 100)
	if !res.Accepted {
		t.Fatalf("expected steal-oldest to accept by evicting")
	}
	if res.StolenNote == nil || res.StolenNote.Key != 60 {
		t.Fatalf("expected stolen note to report key 60")
	}
}

func TestSchedulerActiveChannel(t *testing.T) {
	sched := build12TETScheduler(t, Config{Technique: FullKeyboard, ClashPolicy: DropNew, NumChannels: 2})
	res := sched.NoteOn(60, 100)
	ch, ok := sched.ActiveChannel(60)
	if !ok || ch != res.Channel {
		t.Fatalf("ActiveChannel = %d,%v want %d,true", ch, ok, res.Channel)
	}
}
