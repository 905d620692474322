package sclfile

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func approxEqual(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v (tol %v)", got, want, tol)
	}
}

const twelveToneScl = `! 12-tet.scl
!
12 equal divisions of the octave
 12
!
100.0
200.0
300.0
400.0
500.0
600.0
700.0
800.0
900.0
1000.0
1100.0
2/1
`

func TestParse12TET(t *testing.T) {
	s, err := Parse(strings.NewReader(twelveToneScl))
	if err != nil {
		t.Fatal(err)
	}
	if s.Size() != 12 {
		t.Fatalf("Size() = %d, want 12", s.Size())
	}
	approxEqual(t, s.DegreeToRatio(7).Cents(), 700, 1e-6)
	approxEqual(t, s.Period.Cents(), 1200, 1e-6)
}

func TestParseRejectsCountMismatch(t *testing.T) {
	bad := strings.Replace(twelveToneScl, " 12\n", " 11\n", 1)
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatalf("expected error for declared/actual step count mismatch")
	}
}

func TestWriteThenParseRoundTrips(t *testing.T) {
	s, err := Parse(strings.NewReader(twelveToneScl))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	s2, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if s2.Size() != s.Size() {
		t.Fatalf("Size() = %d, want %d", s2.Size(), s.Size())
	}
	approxEqual(t, s2.DegreeToRatio(7).Cents(), s.DegreeToRatio(7).Cents(), 1e-6)
}
