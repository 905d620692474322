package keymap

import "testing"

func TestDefaultMapsIdentity(t *testing.T) {
	k := Default()
	degree, ok := k.KeyToDegree(69)
	if !ok || degree != 0 {
		t.Fatalf("degree=%d ok=%v, want 0 true", degree, ok)
	}
	degree, ok = k.KeyToDegree(81)
	if !ok || degree != 12 {
		t.Fatalf("degree=%d ok=%v, want 12 true", degree, ok)
	}
}

func TestKeyOutOfRange(t *testing.T) {
	k := Default()
	k.FirstMIDIKey, k.LastMIDIKey = 40, 90
	if _, ok := k.KeyToDegree(30); ok {
		t.Fatalf("expected key 30 to be out of range")
	}
}

func TestRepeatingPatternWithUnmapped(t *testing.T) {
	k := &KeyMap{
		FirstMIDIKey:        0,
		LastMIDIKey:         127,
		RootKey:             60,
		FormalOctaveDegrees: 7,
		Pattern:             []int{0, Unmapped, 1, 2, Unmapped, 3, 4, 5, Unmapped, 6, Unmapped, Unmapped},
	}
	degree, ok := k.KeyToDegree(60)
	if !ok || degree != 0 {
		t.Fatalf("degree=%d ok=%v, want 0 true", degree, ok)
	}
	if _, ok := k.KeyToDegree(61); ok {
		t.Fatalf("expected key 61 unmapped")
	}
	degree, ok = k.KeyToDegree(72)
	if !ok || degree != 7 {
		t.Fatalf("degree=%d ok=%v, want 7 true", degree, ok)
	}
}

func TestValidateRejectsEmptyPattern(t *testing.T) {
	k := &KeyMap{FirstMIDIKey: 0, LastMIDIKey: 127}
	if err := k.Validate(); err == nil {
		t.Fatalf("expected error for empty pattern")
	}
}

func TestValidateRejectsAllUnmapped(t *testing.T) {
	k := &KeyMap{FirstMIDIKey: 0, LastMIDIKey: 127, Pattern: []int{Unmapped, Unmapped}}
	if err := k.Validate(); err == nil {
		t.Fatalf("expected error for all-unmapped pattern")
	}
}

func TestValidateRejectsEmptyRange(t *testing.T) {
	k := &KeyMap{FirstMIDIKey: 80, LastMIDIKey: 10, Pattern: []int{0}}
	if err := k.Validate(); err == nil {
		t.Fatalf("expected error for empty key range")
	}
}
