// Package scale models scales as an ordered, period-reducing sequence of
// ratios above a 1/1 root, with constructors for the common generative
// families (equal division, rank-2/generator, harmonic) plus an explicit
// custom/imported variant for Scala .scl content.
package scale

import (
	"fmt"
	"math"
	"sort"

	"github.com/chase3718/microtune/ratio"
)

// Kind identifies which generative family produced a Scale, purely for
// display and round-tripping; the degree math is identical across kinds
// once the step ratios are known.
type Kind string

const (
	KindEqual    Kind = "equal"
	KindRank2    Kind = "rank2"
	KindHarmonic Kind = "harmonic"
	KindCustom   Kind = "custom"
	KindImported Kind = "imported"
)

// Scale is a period-reducing sequence of ratios above 1/1. Degree 0 is
// always the implicit unison; Steps holds the ratios for degrees
// 1..=len(Steps), strictly increasing, with the final step equal to
// Period (a "closed" scale). DegreeToRatio maps degree len(Steps) to
// Period and never reads the final step, so a final step other than
// Period is not sounded.
type Scale struct {
	Kind        Kind
	Description string
	Period      ratio.Ratio
	Steps       []ratio.Ratio
}

// Size returns the number of scale degrees per period, i.e. the EDO-like
// step count excluding the implicit unison.
func (s *Scale) Size() int { return len(s.Steps) }

// DegreeToRatio returns the ratio of the given scale degree relative to
// 1/1, period-reducing degrees outside [0, Size()).
func (s *Scale) DegreeToRatio(degree int) ratio.Ratio {
	n := len(s.Steps)
	octave, index := divMod(degree, n)
	base := ratio.Unison()
	if index != 0 {
		base = s.Steps[index-1]
	}
	return base.Compose(s.Period.Repeated(float64(octave)))
}

// RatioToNearestDegree returns the scale degree whose ratio is closest to
// r, plus the deviation (r relative to that degree's ratio).
func (s *Scale) RatioToNearestDegree(r ratio.Ratio) (degree int, deviation ratio.Ratio) {
	n := len(s.Steps)
	if n == 0 {
		return 0, r
	}

	periodOctaves := s.Period.Octaves()
	octave := 0
	normalized := r
	if periodOctaves != 0 {
		octave = int(math.Floor(r.Octaves() / periodOctaves))
		normalized = r.DeviationFrom(s.Period.Repeated(float64(octave)))
	}

	bestIndex := 0
	bestAbsDev := math.Abs(normalized.Octaves())
	for i, step := range s.Steps {
		dev := math.Abs(normalized.DeviationFrom(step).Octaves())
		if dev < bestAbsDev {
			bestAbsDev = dev
			bestIndex = i + 1
		}
	}
	if bestIndex == n && math.Abs(normalized.DeviationFrom(s.Period).Octaves()) < bestAbsDev {
		bestIndex = 0
		octave++
	}

	degree = octave*n + bestIndex
	deviation = r.DeviationFrom(s.DegreeToRatio(degree))
	return degree, deviation
}

// divMod is floor division with a non-negative remainder, matching the
// period-reduction semantics used throughout tuning math (unlike Go's
// native %, which takes the sign of the dividend).
func divMod(a, n int) (div, mod int) {
	div = a / n
	mod = a % n
	if mod < 0 {
		mod += n
		div--
	}
	return div, mod
}

// Builder accumulates a strictly increasing sequence of step ratios above
// 1/1 for one period.
type Builder struct {
	period ratio.Ratio
	steps  []ratio.Ratio
}

// NewBuilder starts a Builder for a scale with the given period (commonly
// the octave, ratio.Octave()).
func NewBuilder(period ratio.Ratio) *Builder {
	return &Builder{period: period}
}

// PushRatio appends a step given directly as a Ratio. Returns an error if
// it is not strictly greater than the previous step (or than 1/1, for the
// first step).
func (b *Builder) PushRatio(r ratio.Ratio) error {
	last := ratio.Unison()
	if len(b.steps) > 0 {
		last = b.steps[len(b.steps)-1]
	}
	if !last.Less(r) {
		return fmt.Errorf("scale steps must be strictly increasing: %v is not greater than %v", r, last)
	}
	b.steps = append(b.steps, r)
	return nil
}

// PushCents appends a step given in cents above 1/1.
func (b *Builder) PushCents(cents float64) error {
	return b.PushRatio(ratio.FromCents(cents))
}

// PushFraction appends a step given as a rational numer/denom above 1/1.
func (b *Builder) PushFraction(numer, denom float64) error {
	return b.PushRatio(ratio.FromFraction(numer, denom))
}

// Build finalizes the accumulated steps into a Scale. Returns an error if
// no steps were pushed.
func (b *Builder) Build(kind Kind, description string) (*Scale, error) {
	if len(b.steps) == 0 {
		return nil, fmt.Errorf("scale must have at least one step")
	}
	return &Scale{
		Kind:        kind,
		Description: description,
		Period:      b.period,
		Steps:       append([]ratio.Ratio(nil), b.steps...),
	}, nil
}

// NewEqualDivision builds an equal-division-of-the-period scale: the
// period is divided into numSteps equally sized steps, e.g.
// NewEqualDivision(12, ratio.Octave()) is standard 12-TET.
func NewEqualDivision(numSteps int, period ratio.Ratio) (*Scale, error) {
	if numSteps <= 0 {
		return nil, fmt.Errorf("equal division requires a positive step count, got %d", numSteps)
	}
	step := period.DividedIntoEqualSteps(float64(numSteps))
	b := NewBuilder(period)
	for i := 1; i <= numSteps; i++ {
		if err := b.PushRatio(step.Repeated(float64(i))); err != nil {
			return nil, err
		}
	}
	return b.Build(KindEqual, fmt.Sprintf("%d equal divisions of %v", numSteps, period))
}

// NewEqualStepSize builds an equal-division scale from a step size rather
// than a division count: the number of steps is period/step rounded to the
// nearest integer, and the period is divided into that many equal steps.
// The resulting step equals step only when step divides period evenly.
func NewEqualStepSize(step ratio.Ratio, period ratio.Ratio) (*Scale, error) {
	numSteps := int(math.Round(period.NumEqualStepsOfSize(step)))
	return NewEqualDivision(numSteps, period)
}

// NewRank2Temperament builds a rank-2 (generator + period) scale by
// walking the generator numPos steps up and numNeg steps down from
// unison, period-reducing and sorting the results, then closing the scale
// with the period. This is the family covering meantone-style and other
// generator temperaments.
func NewRank2Temperament(generator, period ratio.Ratio, numPos, numNeg int) (*Scale, error) {
	if numPos < 0 || numNeg < 0 {
		return nil, fmt.Errorf("generator counts must be non-negative, got numPos=%d numNeg=%d", numPos, numNeg)
	}
	total := numPos + numNeg
	if total == 0 {
		return nil, fmt.Errorf("rank-2 temperament requires at least one generator step")
	}

	reduce := func(r ratio.Ratio) ratio.Ratio {
		periodOctaves := period.Octaves()
		if periodOctaves == 0 {
			return r
		}
		k := math.Floor(r.Octaves() / periodOctaves)
		return r.DeviationFrom(period.Repeated(k))
	}

	pitches := make([]ratio.Ratio, 0, total)
	for i := 1; i <= numPos; i++ {
		pitches = append(pitches, reduce(generator.Repeated(float64(i))))
	}
	for i := 1; i <= numNeg; i++ {
		pitches = append(pitches, reduce(generator.Repeated(float64(-i))))
	}
	sort.Slice(pitches, func(i, j int) bool { return pitches[i].Less(pitches[j]) })

	b := NewBuilder(period)
	for _, p := range pitches {
		if err := b.PushRatio(p); err != nil {
			return nil, fmt.Errorf("rank-2 temperament produced a degenerate (coincident) step: %w", err)
		}
	}
	if err := b.PushRatio(period); err != nil {
		return nil, err
	}
	return b.Build(KindRank2, fmt.Sprintf("rank-2 temperament: generator %v, %d positive / %d negative steps", generator, numPos, numNeg))
}

// NewHarmonicScale builds a scale from a contiguous run of harmonics (or,
// if subharmonics is true, subharmonics) above lowestHarmonic, e.g.
// NewHarmonicScale(8, 8, false) is the harmonic series 9/8..16/8.
func NewHarmonicScale(lowestHarmonic, numberOfNotes int, subharmonics bool) (*Scale, error) {
	if lowestHarmonic <= 0 {
		return nil, fmt.Errorf("lowest harmonic must be positive, got %d", lowestHarmonic)
	}
	if numberOfNotes <= 0 {
		return nil, fmt.Errorf("number of notes must be positive, got %d", numberOfNotes)
	}

	b := NewBuilder(ratio.Octave())
	kindLabel := "harmonics"
	if subharmonics {
		kindLabel = "subharmonics"
		for denom := lowestHarmonic - 1; denom >= lowestHarmonic-numberOfNotes; denom-- {
			if denom <= 0 {
				return nil, fmt.Errorf("subharmonic series below %d ran out of positive denominators", lowestHarmonic)
			}
			if err := b.PushFraction(float64(lowestHarmonic), float64(denom)); err != nil {
				return nil, err
			}
		}
	} else {
		for numer := lowestHarmonic + 1; numer <= lowestHarmonic+numberOfNotes; numer++ {
			if err := b.PushFraction(float64(numer), float64(lowestHarmonic)); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(KindHarmonic, fmt.Sprintf("%s starting at %d, %d notes", kindLabel, lowestHarmonic, numberOfNotes))
}

// NewCustom builds a scale directly from an explicit, already-sorted list
// of step ratios, used for Scala .scl import and user-specified scales.
func NewCustom(steps []ratio.Ratio, period ratio.Ratio, description string, imported bool) (*Scale, error) {
	b := NewBuilder(period)
	for _, r := range steps {
		if err := b.PushRatio(r); err != nil {
			return nil, err
		}
	}
	kind := KindCustom
	if imported {
		kind = KindImported
	}
	return b.Build(kind, description)
}
