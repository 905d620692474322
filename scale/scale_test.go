package scale

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

func Test12EDODegrees(t *testing.T) {
	s, err := NewEqualDivision(12, ratio.Octave())
	if err != nil {
		t.Fatal(err)
	}
	if s.Size() != 12 {
		t.Fatalf("Size() = %d, want 12", s.Size())
	}
	approxEqual(t, s.DegreeToRatio(0).Cents(), 0, 1e-9)
	approxEqual(t, s.DegreeToRatio(7).Cents(), 700, 1e-9)
	approxEqual(t, s.DegreeToRatio(12).Cents(), 1200, 1e-9)
	approxEqual(t, s.DegreeToRatio(-1).Cents(), -100, 1e-9)
}

func TestDegreeToRatioWraps(t *testing.T) {
	s, err := NewEqualDivision(12, ratio.Octave())
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, s.DegreeToRatio(24).Cents(), 2400, 1e-9)
	approxEqual(t, s.DegreeToRatio(13).Cents(), 1300, 1e-9)
}

func TestRatioToNearestDegreeExact(t *testing.T) {
	s, err := NewEqualDivision(12, ratio.Octave())
	if err != nil {
		t.Fatal(err)
	}
	degree, dev := s.RatioToNearestDegree(ratio.FromCents(700))
	if degree != 7 {
		t.Fatalf("degree = %d, want 7", degree)
	}
	if !dev.IsNegligible() {
		t.Fatalf("deviation = %v, want negligible", dev.Cents())
	}
}

func TestRatioToNearestDegreeRounds(t *testing.T) {
	s, err := NewEqualDivision(12, ratio.Octave())
	if err != nil {
		t.Fatal(err)
	}
	degree, dev := s.RatioToNearestDegree(ratio.FromCents(695))
	if degree != 7 {
		t.Fatalf("degree = %d, want 7", degree)
	}
	approxEqual(t, dev.Cents(), -5, 1e-6)
}

func TestBuilderRejectsNonIncreasing(t *testing.T) {
	b := NewBuilder(ratio.Octave())
	if err := b.PushCents(700); err != nil {
		t.Fatal(err)
	}
	if err := b.PushCents(500); err == nil {
		t.Fatalf("expected error pushing a decreasing step")
	}
}

func TestBuilderRejectsEmpty(t *testing.T) {
	b := NewBuilder(ratio.Octave())
	if _, err := b.Build(KindCustom, "empty"); err == nil {
		t.Fatalf("expected error building empty scale")
	}
}

func TestRank2Temperament(t *testing.T) {
	fifth := ratio.FromFraction(3, 2)
	s, err := NewRank2Temperament(fifth, ratio.Octave(), 6, 5)
	if err != nil {
		t.Fatal(err)
	}
	if s.Size() != 12 {
		t.Fatalf("Size() = %d, want 12", s.Size())
	}
	for i := 1; i < len(s.Steps); i++ {
		if !s.Steps[i-1].Less(s.Steps[i]) {
			t.Fatalf("steps not strictly increasing at index %d", i)
		}
	}
}

func TestHarmonicScale(t *testing.T) {
	s, err := NewHarmonicScale(8, 8, false)
	if err != nil {
		t.Fatal(err)
	}
	if s.Size() != 8 {
		t.Fatalf("Size() = %d, want 8", s.Size())
	}
	approxEqual(t, s.DegreeToRatio(8).Float(), 2.0, 1e-9)
}

func TestHarmonicScaleSubharmonics(t *testing.T) {
	s, err := NewHarmonicScale(16, 8, true)
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, s.DegreeToRatio(8).Float(), 2.0, 1e-9)
}

func TestNewCustom(t *testing.T) {
	steps := []ratio.Ratio{ratio.FromCents(200), ratio.FromCents(400), ratio.Octave()}
	s, err := NewCustom(steps, ratio.Octave(), "test", true)
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != KindImported {
		t.Fatalf("Kind = %v, want %v", s.Kind, KindImported)
	}
}
