package midiio

import "testing"

func TestContainsCI(t *testing.T) {
	if !containsCI("Launchkey Mini MK3", "launchkey") {
		t.Fatalf("expected case-insensitive match")
	}
	if containsCI("Midi Through Port-0", "launchkey") {
		t.Fatalf("expected no match")
	}
}

func TestBuildChecksummedFrame(t *testing.T) {
	frame, err := buildChecksummedFrame([]byte{0x90, 0x40, 0x7F})
	if err != nil {
		t.Fatal(err)
	}
	if frame[0] != 0xF5 || frame[1] != 0xF6 || frame[2] != 3 {
		t.Fatalf("frame header = %x, want F5 F6 03", frame[:3])
	}
	want := byte(3) ^ 0x90 ^ 0x40 ^ 0x7F
	if frame[len(frame)-1] != want {
		t.Fatalf("checksum = %x, want %x", frame[len(frame)-1], want)
	}
}

func TestBuildChecksummedFrameRejectsOversized(t *testing.T) {
	if _, err := buildChecksummedFrame(make([]byte, 300)); err == nil {
		t.Fatalf("expected error for oversized payload")
	}
}
