// Package ratio implements exact frequency-ratio arithmetic.
//
// A Ratio is stored internally as its base-2 logarithm (octaves) so that
// composing intervals is plain addition and the representation is
// associative under composition regardless of how deeply ratios are
// nested or parsed.
package ratio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ratio is a positive frequency ratio between two pitches, held internally
// as its base-2 logarithm in octaves.
type Ratio struct {
	octaves float64
}

// FromFloat builds a Ratio from a linear factor. Panics if factor is not
// finite and positive, matching the invariant that a ratio's octave
// measure must be finite.
func FromFloat(factor float64) Ratio {
	if !(factor > 0 && !math.IsInf(factor, 0)) {
		panic(fmt.Sprintf("ratio must be finite and positive but was %v", factor))
	}
	return Ratio{octaves: math.Log2(factor)}
}

// FromOctaves builds a Ratio directly from an octave measure.
func FromOctaves(octaves float64) Ratio {
	return Ratio{octaves: octaves}
}

// FromCents builds a Ratio from a cents value (1/1200 octave).
func FromCents(cents float64) Ratio {
	return FromOctaves(cents / 1200.0)
}

// FromSemitones builds a Ratio from a number of 12-TET semitones.
func FromSemitones(semitones float64) Ratio {
	return FromOctaves(semitones / 12.0)
}

// FromFraction builds a Ratio from a rational n/d.
func FromFraction(numer, denom float64) Ratio {
	return FromFloat(numer / denom)
}

// Unison is the neutral ratio 1/1.
func Unison() Ratio { return Ratio{} }

// Octave is the 2/1 ratio.
func Octave() Ratio { return FromFloat(2.0) }

// Float returns the linear frequency factor.
func (r Ratio) Float() float64 { return math.Exp2(r.octaves) }

// Octaves returns the base-2 logarithm of the ratio.
func (r Ratio) Octaves() float64 { return r.octaves }

// Semitones returns the ratio expressed in 12-TET semitones.
func (r Ratio) Semitones() float64 { return r.octaves * 12.0 }

// Cents returns the ratio expressed in cents.
func (r Ratio) Cents() float64 { return r.octaves * 1200.0 }

// Compose returns the ratio resulting from applying r then other; addition
// of octave measures, so Compose is associative and commutative.
func (r Ratio) Compose(other Ratio) Ratio {
	return Ratio{octaves: r.octaves + other.octaves}
}

// Inv returns the inverse ratio (negated octave measure).
func (r Ratio) Inv() Ratio {
	return Ratio{octaves: -r.octaves}
}

// Repeated applies r to itself n times (n may be fractional).
func (r Ratio) Repeated(n float64) Ratio {
	return Ratio{octaves: r.octaves * n}
}

// DividedIntoEqualSteps divides r into n equal steps, returning the size of
// one step. Inverse of Repeated.
func (r Ratio) DividedIntoEqualSteps(n float64) Ratio {
	return Ratio{octaves: r.octaves / n}
}

// NumEqualStepsOfSize returns how many steps of the given size fit into r.
func (r Ratio) NumEqualStepsOfSize(step Ratio) float64 {
	return r.octaves / step.octaves
}

// DeviationFrom returns the signed ratio of r relative to reference:
// r.DeviationFrom(ref).Compose(ref) == r (within floating point error).
func (r Ratio) DeviationFrom(reference Ratio) Ratio {
	return Ratio{octaves: r.octaves - reference.octaves}
}

// StretchedBy is an alias for Compose, read as "stretch r by the given
// ratio"; it is the operation DeviationFrom reverses.
func (r Ratio) StretchedBy(stretch Ratio) Ratio {
	return r.Compose(stretch)
}

// IsNegligible reports whether the ratio is within about half a thousandth
// of a cent of 1/1.
func (r Ratio) IsNegligible() bool {
	const halfAThousandthOfACentInOctaves = 0.0005 / 1200.0
	return math.Abs(r.octaves) < halfAThousandthOfACentInOctaves
}

// Less orders ratios by their underlying octave measure.
func (r Ratio) Less(other Ratio) bool { return r.octaves < other.octaves }

// String renders the ratio as a 4-decimal linear factor, e.g. "1.5000".
func (r Ratio) String() string {
	return strconv.FormatFloat(r.Float(), 'f', 4, 64)
}

// CentsString renders the ratio as a signed cents value, e.g. "+701.955c".
func (r Ratio) CentsString() string {
	return fmt.Sprintf("%+.3fc", r.Cents())
}

// Parse parses the ratio expression grammar used by the CLI and SCL
// import:
//
//	num:denom:interval  -> interval^(num/denom)
//	num/denom           -> num/denom
//	CENTSc              -> 2^(CENTS/1200)
//	(expr)              -> recurse
//	float               -> literal linear factor
//
// Precedence is ':' > '/' > 'c' > parentheses, matching the grammar in
// spec.md §4.A.
func Parse(s string) (Ratio, error) {
	s = strings.TrimSpace(s)
	v, err := parseExpr(s)
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio expression %q: %w", s, err)
	}
	if !(v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)) {
		return Ratio{}, fmt.Errorf("invalid ratio expression %q: evaluates to %v but should be positive", s, v)
	}
	return Ratio{octaves: math.Log2(v)}, nil
}

func parseExpr(s string) (float64, error) {
	s = strings.TrimSpace(s)

	if parts := splitBalanced(s, ':'); len(parts) == 3 {
		numer, err := parseExprNamed(parts[0], "interval numerator")
		if err != nil {
			return 0, err
		}
		denom, err := parseExprNamed(parts[1], "interval denominator")
		if err != nil {
			return 0, err
		}
		interval, err := parseExprNamed(parts[2], "interval")
		if err != nil {
			return 0, err
		}
		if denom == 0 {
			return math.Inf(int(numer)), nil
		}
		return math.Pow(interval, numer/denom), nil
	}

	if parts := splitBalanced(s, '/'); len(parts) == 2 {
		numer, err := parseExprNamed(parts[0], "numerator")
		if err != nil {
			return 0, err
		}
		denom, err := parseExprNamed(parts[1], "denominator")
		if err != nil {
			return 0, err
		}
		return numer / denom, nil
	}

	if parts := splitBalanced(s, 'c'); len(parts) == 2 && parts[1] == "" {
		cents, err := parseExprNamed(parts[0], "cents value")
		if err != nil {
			return 0, err
		}
		return math.Exp2(cents / 1200.0), nil
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return parseExpr(s[1 : len(s)-1])
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("must be a float (e.g. 1.5), fraction (e.g. 3/2), " +
			"interval fraction (e.g. 7:12:2) or cents value (e.g. 702c)")
	}
	return f, nil
}

func parseExprNamed(s, name string) (float64, error) {
	v, err := parseExpr(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, strings.TrimSpace(s), err)
	}
	return v, nil
}

// splitBalanced splits s on every top-level occurrence of sep, i.e. one
// not nested inside parentheses, and returns all resulting segments. If sep
// does not occur at the top level, the result is the single segment s;
// callers check len() for the two (or, for ':', three) parts they accept.
func splitBalanced(s string, sep byte) []string {
	depth := 0
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		default:
			if depth == 0 && s[i] == sep {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// NearestFraction is the best rational approximation of a Ratio under a
// limit on the largest acceptable odd factor of numerator/denominator.
type NearestFraction struct {
	Numer, Denom int
	Deviation    Ratio
	NumOctaves   int
}

// NearestFraction finds the closest n/d (odd factors <= limit) to r,
// normalized into a single octave; NumOctaves reports how many octaves
// were factored out.
func (r Ratio) NearestFraction(limit int) NearestFraction {
	number := r.Float()
	numOctaves := int(math.Floor(math.Log2(number)))
	normalized := number / math.Exp2(float64(numOctaves))

	bestNumer, bestDenom := 1, 1
	bestAbsDeviation := normalized
	bestSign := 1

	for denom := 1; denom <= limit; denom++ {
		numerF := float64(denom) * normalized

		tryCandidate := func(ratioToOne float64, numer int, sign int) {
			if oddFactors(numer) <= limit && ratioToOne < bestAbsDeviation {
				bestNumer, bestDenom = numer, denom
				bestAbsDeviation = ratioToOne
				bestSign = sign
			}
		}

		floorNumer := math.Floor(numerF)
		if floorNumer >= 1 {
			tryCandidate(numerF/floorNumer, int(floorNumer), 1)
		}
		ceilNumer := math.Ceil(numerF)
		if ceilNumer >= 1 {
			tryCandidate(ceilNumer/numerF, int(ceilNumer), -1)
		}
	}

	numer, denom := simplify(bestNumer, bestDenom)
	deviation := FromFloat(bestAbsDeviation)
	if bestSign < 0 {
		deviation = deviation.Inv()
	}

	return NearestFraction{
		Numer:      numer,
		Denom:      denom,
		Deviation:  deviation,
		NumOctaves: numOctaves,
	}
}

func (f NearestFraction) String() string {
	return fmt.Sprintf("%d/%d [%+.0fc] (%+do)", f.Numer, f.Denom, f.Deviation.Cents(), f.NumOctaves)
}

// oddFactors strips factors of two and returns the largest remaining odd
// factor search space needed by NearestFraction: e.g. 12 -> 3, 11 -> 11.
func oddFactors(n int) int {
	if n <= 0 {
		return 0
	}
	for n%2 == 0 {
		n /= 2
	}
	return n
}

func simplify(numer, denom int) (int, int) {
	g := gcd(numer, denom)
	if g == 0 {
		return numer, denom
	}
	return numer / g, denom / g
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
