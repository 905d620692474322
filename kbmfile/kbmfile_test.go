package kbmfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chase3718/microtune/keymap"
)

const identityKbm = `! Size of map
0
! First MIDI note number
0
! Last MIDI note number
127
! Middle note
60
! Reference note
69
! Frequency
440.0
! Formal octave
1
! Mapping
0
`

func TestParseIdentity(t *testing.T) {
	k, err := Parse(strings.NewReader(identityKbm))
	if err != nil {
		t.Fatal(err)
	}
	if k.FirstMIDIKey != 0 || k.LastMIDIKey != 127 {
		t.Fatalf("range = [%d, %d], want [0, 127]", k.FirstMIDIKey, k.LastMIDIKey)
	}
	degree, ok := k.KeyToDegree(69)
	if !ok || degree != 9 {
		t.Fatalf("degree=%d ok=%v, want 9 true", degree, ok)
	}
}

func TestParseUnmappedEntries(t *testing.T) {
	doc := `7
60
72
60
69
440.0
7
0
x
1
2
x
3
4
`
	k, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := k.KeyToDegree(61); ok {
		t.Fatalf("expected key 61 to be unmapped")
	}
	degree, ok := k.KeyToDegree(62)
	if !ok || degree != 1 {
		t.Fatalf("degree=%d ok=%v, want 1 true", degree, ok)
	}
}

func TestWriteThenParseRoundTrips(t *testing.T) {
	k := keymap.Default()
	var buf bytes.Buffer
	if err := Write(&buf, k); err != nil {
		t.Fatal(err)
	}
	k2, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if k2.RootKey != k.RootKey || k2.ReferenceKey != k.ReferenceKey {
		t.Fatalf("round trip mismatch: %+v vs %+v", k2, k)
	}
}

func TestParseRejectsTooFewFields(t *testing.T) {
	if _, err := Parse(strings.NewReader("0\n60\n")); err == nil {
		t.Fatalf("expected error for too few header fields")
	}
}
