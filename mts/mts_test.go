package mts

import (
	"testing"

	"github.com/chase3718/microtune/pitch"
)

func TestSemitoneAndFractionExact(t *testing.T) {
	semitone, fraction := semitoneAndFraction(pitch.FromHz(440))
	if semitone != 69 {
		t.Fatalf("semitone = %d, want 69", semitone)
	}
	if fraction < -1e-9 || fraction > 1e-9 {
		t.Fatalf("fraction = %v, want ~0", fraction)
	}
}

func TestEncodeNoteEntrySentinelOutOfRange(t *testing.T) {
	entry := encodeNoteEntry(NoteTuningChange{Key: 0, Pitch: pitch.FromHz(1)})
	if entry != [3]byte{sentinelByte, sentinelByte, sentinelByte} {
		t.Fatalf("entry = %v, want sentinel", entry)
	}
}

func TestEncodeSingleNoteTuningChangeHeader(t *testing.T) {
	changes := []NoteTuningChange{{Key: 60, Pitch: pitch.FromHz(261.625565)}}
	msgs, err := EncodeSingleNoteTuningChange(changes, Options{DeviceID: DeviceIDBroadcast, TuningProgram: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	msg := msgs[0]
	if msg[0] != sysExStart || msg[len(msg)-1] != sysExEnd {
		t.Fatalf("message not properly framed: %x", msg)
	}
	if msg[1] != nonRealTime {
		t.Fatalf("header = %x, want non-realtime", msg[1])
	}
	if msg[3] != midiTuningStandard || msg[4] != subIDSingleNoteTuningChange {
		t.Fatalf("sub-ids wrong: %x %x", msg[3], msg[4])
	}
	if msg[6] != 1 {
		t.Fatalf("count = %d, want 1", msg[6])
	}
}

func TestEncodeSingleNoteTuningChangeBatches128(t *testing.T) {
	changes := make([]NoteTuningChange, 128)
	for i := range changes {
		changes[i] = NoteTuningChange{Key: i, Pitch: pitch.FromHz(440)}
	}
	msgs, err := EncodeSingleNoteTuningChange(changes, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2 (128 split into two 64s)", len(msgs))
	}
	if msgs[0][6] != 64 || msgs[1][6] != 64 {
		t.Fatalf("batch sizes = %d, %d, want 64, 64", msgs[0][6], msgs[1][6])
	}
}

func TestEncodeSingleNoteTuningChangeRejectsKeyOutOfRange(t *testing.T) {
	changes := []NoteTuningChange{{Key: 200, Pitch: pitch.FromHz(440)}}
	if _, err := EncodeSingleNoteTuningChange(changes, Options{}); err == nil {
		t.Fatalf("expected error for key out of range")
	}
}

func TestEncodeBulkTuningDumpCovers128Keys(t *testing.T) {
	changes := []NoteTuningChange{{Key: 69, Pitch: pitch.FromHz(440)}}
	msg, err := EncodeBulkTuningDump(changes, "test", Options{})
	if err != nil {
		t.Fatal(err)
	}
	// header(6) + name(16) + 128*3 entries + checksum + terminator
	want := 6 + 16 + 128*3 + 2
	if len(msg) != want {
		t.Fatalf("len(msg) = %d, want %d", len(msg), want)
	}
}

func TestChannelsBitmapAll(t *testing.T) {
	bm := AllChannels().bitmap()
	if bm != [3]byte{0b00000011, 0b01111111, 0b01111111} {
		t.Fatalf("bitmap = %v, want all-channels pattern", bm)
	}
}

func TestChannelsBitmapSome(t *testing.T) {
	bm := SomeChannels(0).bitmap()
	if bm[2] != 0b00000001 {
		t.Fatalf("bitmap[2] = %b, want bit 0 set (channel 0 lives in the low-row byte)", bm[2])
	}
}

func TestEncodeScaleOctaveTuningOneByteCenter(t *testing.T) {
	var offsets OctaveOffsets
	msg := EncodeScaleOctaveTuning(offsets, AllChannels(), OneByte, Options{})
	// header(5) + bitmap(3) + 12 payload bytes + terminator
	if len(msg) != 5+3+12+1 {
		t.Fatalf("len(msg) = %d", len(msg))
	}
	if msg[5] != 0x03 || msg[6] != 0x7F || msg[7] != 0x7F {
		t.Fatalf("bitmap bytes = %02X %02X %02X, want 03 7F 7F", msg[5], msg[6], msg[7])
	}
	for i := 0; i < 12; i++ {
		if msg[8+i] != 64 {
			t.Fatalf("payload[%d] = %d, want 64 (center)", i, msg[8+i])
		}
	}
}

func TestEncodeScaleOctaveTuningOneByteTenCents(t *testing.T) {
	var offsets OctaveOffsets
	offsets[0] = 10
	msg := EncodeScaleOctaveTuning(offsets, AllChannels(), OneByte, Options{})
	if msg[8] != 74 {
		t.Fatalf("payload[0] = %d, want 74 for +10 cents", msg[8])
	}
}

func TestEncodeScaleOctaveTuningTwoByteCenter(t *testing.T) {
	var offsets OctaveOffsets
	msg := EncodeScaleOctaveTuning(offsets, AllChannels(), TwoByte, Options{})
	if len(msg) != 5+3+24+1 {
		t.Fatalf("len(msg) = %d", len(msg))
	}
}

func TestEncodeChannelFineTuningZero(t *testing.T) {
	msgs, err := EncodeChannelFineTuning(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	if msgs[2][2] != 64 || msgs[3][2] != 0 {
		t.Fatalf("data entry = %d %d, want center 8192 (64, 0)", msgs[2][2], msgs[3][2])
	}
}

func TestEncodeChannelFineTuningRejectsOutOfRange(t *testing.T) {
	if _, err := EncodeChannelFineTuning(0, 200); err == nil {
		t.Fatalf("expected error for out-of-range detune")
	}
}

func TestEncodePitchBendCenter(t *testing.T) {
	msg, err := EncodePitchBend(0, 0, DefaultPitchBendRangeSemitones)
	if err != nil {
		t.Fatal(err)
	}
	if msg[1] != 0 || msg[2] != 64 {
		t.Fatalf("pitch bend = %d %d, want center (0, 64)", msg[1], msg[2])
	}
}

func TestEncodePitchBendRejectsOutOfRange(t *testing.T) {
	if _, err := EncodePitchBend(0, 5, DefaultPitchBendRangeSemitones); err == nil {
		t.Fatalf("expected error for bend exceeding range")
	}
}
