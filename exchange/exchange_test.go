package exchange

import (
	"math"
	"testing"

	"github.com/chase3718/microtune/keymap"
	"github.com/chase3718/microtune/ratio"
	"github.com/chase3718/microtune/scale"
	"github.com/chase3718/microtune/tuning"
)

func approxEqual(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v (tol %v)", got, want, tol)
	}
}

func build12TET(t *testing.T) *tuning.TunedScale {
	s, err := scale.NewEqualDivision(12, ratio.Octave())
	if err != nil {
		t.Fatal(err)
	}
	return tuning.New(s, keymap.Default())
}

func TestNewScaleDocument(t *testing.T) {
	ts := build12TET(t)
	doc, err := NewScaleDocument(ts, 69, 60, 72)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Kind != KindScale || doc.Scale == nil {
		t.Fatalf("expected a scale document")
	}
	if len(doc.Scale.Items) != 13 {
		t.Fatalf("len(Items) = %d, want 13", len(doc.Scale.Items))
	}
	for _, item := range doc.Scale.Items {
		if item.Key == 72 {
			approxEqual(t, item.Cents, 300, 1e-6)
		}
	}
}

func TestMarshalUnmarshalRoundTrips(t *testing.T) {
	ts := build12TET(t)
	doc, err := NewScaleDocument(ts, 69, 60, 72)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindScale || len(got.Scale.Items) != len(doc.Scale.Items) {
		t.Fatalf("round trip mismatch")
	}
}

func TestUnmarshalRejectsUnknownKind(t *testing.T) {
	if _, err := Unmarshal([]byte("kind: bogus\n")); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestNewDumpDocument(t *testing.T) {
	ts := build12TET(t)
	doc := NewDumpDocument(ts, 60, 72)
	if doc.Kind != KindDump || doc.Dump == nil {
		t.Fatalf("expected a dump document")
	}
	if len(doc.Dump.Items) != 13 {
		t.Fatalf("len(Items) = %d, want 13", len(doc.Dump.Items))
	}
}
