package tuning

import (
	"math"
	"testing"

	"github.com/chase3718/microtune/keymap"
	"github.com/chase3718/microtune/pitch"
	"github.com/chase3718/microtune/ratio"
	"github.com/chase3718/microtune/scale"
)

func approxEqual(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v (tol %v)", got, want, tol)
	}
}

func Test12EDOMatchesConcertPitch(t *testing.T) {
	s, err := scale.NewEqualDivision(12, ratio.Octave())
	if err != nil {
		t.Fatal(err)
	}
	ts := New(s, keymap.Default())

	p, ok := ts.KeyPitch(69)
	if !ok {
		t.Fatalf("key 69 should be mapped")
	}
	approxEqual(t, p.Hz(), 440, 1e-6)

	p, ok = ts.KeyPitch(81)
	if !ok {
		t.Fatalf("key 81 should be mapped")
	}
	approxEqual(t, p.Hz(), 880, 1e-6)
}

func TestFindNearestKeyRoundTrips(t *testing.T) {
	s, err := scale.NewEqualDivision(12, ratio.Octave())
	if err != nil {
		t.Fatal(err)
	}
	ts := New(s, keymap.Default())

	key, dev, found := ts.FindNearestKey(pitch.FromHz(880))
	if !found {
		t.Fatalf("expected a nearest key")
	}
	if key != 81 {
		t.Fatalf("key = %d, want 81", key)
	}
	if !dev.IsNegligible() {
		t.Fatalf("deviation = %v, want negligible", dev.Cents())
	}
}

func TestFindNearestKeySkipsUnmapped(t *testing.T) {
	s, err := scale.NewEqualDivision(12, ratio.Octave())
	if err != nil {
		t.Fatal(err)
	}
	km := keymap.Default()
	km.FirstMIDIKey, km.LastMIDIKey = 60, 64
	ts := New(s, km)

	key, _, found := ts.FindNearestKey(pitch.FromHz(20000))
	if !found {
		t.Fatalf("expected nearest-key search to still find the closest in-range key")
	}
	if key != 64 {
		t.Fatalf("key = %d, want 64 (highest mapped key)", key)
	}
}
