package pitch

import (
	"math"
	"testing"

	"github.com/chase3718/microtune/ratio"
)

func approxEqual(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v (tol %v)", got, want, tol)
	}
}

func TestFromHz(t *testing.T) {
	p := FromHz(440)
	approxEqual(t, p.Hz(), 440, 1e-9)
}

func TestTimesAndDividedByAreInverses(t *testing.T) {
	p := FromHz(220)
	r := ratio.FromFraction(3, 2)
	approxEqual(t, p.Times(r).DividedBy(r).Hz(), p.Hz(), 1e-9)
}

func TestRatioTo(t *testing.T) {
	a := FromHz(220)
	b := FromHz(440)
	approxEqual(t, a.RatioTo(b).Float(), 2.0, 1e-9)
}

func TestParse(t *testing.T) {
	p, err := Parse("440Hz")
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, p.Hz(), 440, 1e-9)

	p2, err := Parse("261.625565hz")
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, p2.Hz(), 261.625565, 1e-6)
}

func TestParseInvalid(t *testing.T) {
	cases := []string{"440", "abcHz", "-1Hz", "0Hz"}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q): expected error", c)
		}
	}
}

func TestString(t *testing.T) {
	p := FromHz(440)
	if got, want := p.String(), "440.0000Hz"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDefaultReference(t *testing.T) {
	ref := DefaultReference()
	if ref.Key != 69 {
		t.Errorf("Key = %d, want 69", ref.Key)
	}
	approxEqual(t, ref.Pitch.Hz(), 440, 1e-9)
}

func TestPitchOfKey(t *testing.T) {
	ref := DefaultReference()
	approxEqual(t, ref.PitchOfKey(81).Hz(), 880, 1e-6)
	approxEqual(t, ref.PitchOfKey(57).Hz(), 220, 1e-6)
}
