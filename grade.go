package resistorchecker

import (
	"math"

	"github.com/pkg/errors"
)

// grading defaults from the lab sheet: 1 W resistors questioned against
// a 120 V supply, 5% acceptance bands, near-misses allowed out to 2x.
const (
	DefaultSupplyVolts      = 120.0
	DefaultRatingWatts      = 1.0
	DefaultTolerancePct     = 5.0
	DefaultAlmostMultiplier = 2.0
)

// a percentage band around an exact-zero target is always zero wide, so
// zero targets only accept answers this close to zero.
const zeroTargetEpsilon = 1e-12

// the expected-value formulas divide by the reference resistance and
// take its square root; the catalog refuses non-positive measurements,
// this guards the engine against records built by hand.
var ErrBadReference = errors.New("reference resistance must be above zero")

// Verdict classifies one checked quantity.
type Verdict string

const (
	VerdictMatch    Verdict = "match"    // inside the main tolerance band
	VerdictClose    Verdict = "close"    // outside it, inside the widened band
	VerdictMismatch Verdict = "mismatch" // outside both
)

// Result classifies the whole submission. the labels are written as-is
// into the class spreadsheet, do not rename them.
type Result string

const (
	ResultCorrect   Result = "Correct"
	ResultAlmost    Result = "Almost"
	ResultIncorrect Result = "Incorrect"
)

//
// per-quantity acceptance bands, as percentages of the expected value
//
type Tolerances struct {
	Resistance float64 `json:"resistance"`
	MaxVoltage float64 `json:"maxVoltage"`
	Current    float64 `json:"current"`
	Power      float64 `json:"power"`
}

// UniformTolerances applies one percentage band to all four quantities.
func UniformTolerances(pct float64) Tolerances {
	return Tolerances{Resistance: pct, MaxVoltage: pct, Current: pct, Power: pct}
}

//
// everything the grading engine needs beyond the catalog record and the
// student values. constructed explicitly and passed in so tolerances
// and physics constants are test-injectable rather than ambient.
//
type GradeConfig struct {
	// nominal supply voltage the current/power questions assume
	SupplyVolts float64 `json:"supplyVolts"`
	// power rating assumed for records that do not carry their own
	RatingWatts float64 `json:"ratingWatts"`
	// acceptance band per quantity
	Tolerances Tolerances `json:"tolerances"`
	// widens each band to classify a near-miss as close rather
	// than mismatch
	AlmostMultiplier float64 `json:"almostMultiplier"`
}

// DefaultGradeConfig returns the lab-sheet constants.
func DefaultGradeConfig() GradeConfig {
	return GradeConfig{
		SupplyVolts:      DefaultSupplyVolts,
		RatingWatts:      DefaultRatingWatts,
		Tolerances:       UniformTolerances(DefaultTolerancePct),
		AlmostMultiplier: DefaultAlmostMultiplier,
	}
}

//
// values the student should have arrived at, derived from the
// instructor-measured resistance
//
type Expected struct {
	// maximum voltage the resistor can take without exceeding its
	// power rating: sqrt(rating * R)
	MaxVolts float64 `json:"maxVolts"`
	// current drawn at the supply voltage: V / R
	CurrentAmps float64 `json:"currentAmps"`
	// power dissipated at the supply voltage: V^2 / R
	PowerWatts float64 `json:"powerWatts"`
}

//
// derive the expected quantities from the instructor-measured
// resistance (ohms), the power rating (watts) and the supply voltage
// (volts). fails with ErrBadReference when the resistance is not above
// zero, the one input the formulas cannot tolerate.
//
func ExpectedFromMeasured(refOhms, ratingWatts, supplyVolts float64) (Expected, error) {

	if refOhms <= 0 {
		return Expected{}, errors.Wrapf(ErrBadReference, "got %v ohms", refOhms)
	}

	return Expected{
		MaxVolts:    math.Sqrt(ratingWatts * refOhms),
		CurrentAmps: supplyVolts / refOhms,
		PowerWatts:  (supplyVolts * supplyVolts) / refOhms,
	}, nil
}

//
// report whether a student value sits inside the percentage band around
// the target: |student - target| <= (tolPct/100) * |target|.
// an exact-zero target has no percentage band, there the student value
// must itself be zero to within a fixed epsilon.
//
func WithinTolerance(student, target, tolPct float64) bool {

	if target == 0 {
		return math.Abs(student) < zeroTargetEpsilon
	}
	return math.Abs(student-target) <= (tolPct/100.0)*math.Abs(target)
}

//
// report whether a student value misses the band at tolPct but would
// pass at tolPct*mult - a near-miss worth flagging as close. always
// false for zero targets, and never true for a value already within
// tolerance, so the two predicates are mutually exclusive.
//
func AlmostWithin(student, target, tolPct, mult float64) bool {

	if target == 0 {
		return false
	}
	return !WithinTolerance(student, target, tolPct) && WithinTolerance(student, target, tolPct*mult)
}

//
// one graded quantity: what the student entered, what was expected, the
// band it was judged inside and the verdict
//
type QuantityCheck struct {
	Yours        float64 `json:"yours"`
	Expected     float64 `json:"expected"`
	TolerancePct float64 `json:"tolerancePct"`
	Verdict      Verdict `json:"verdict"`
}

//
// the graded submission: four quantity checks plus the overall result
//
type GradeResult struct {
	Resistance QuantityCheck `json:"resistance"`
	MaxVoltage QuantityCheck `json:"maxVoltage"`
	Current    QuantityCheck `json:"currentAtSupply"`
	Power      QuantityCheck `json:"powerAtSupply"`
	Overall    Result        `json:"result"`
}

// judge one quantity against its expected value
func gradeQuantity(yours, expected, tolPct, mult float64) QuantityCheck {

	verdict := VerdictMismatch
	switch {
	case WithinTolerance(yours, expected, tolPct):
		verdict = VerdictMatch
	case AlmostWithin(yours, expected, tolPct, mult):
		verdict = VerdictClose
	}

	return QuantityCheck{Yours: yours, Expected: expected, TolerancePct: tolPct, Verdict: verdict}
}

// the rating grading should assume for a record: the record's own when
// it has one, else the configured batch rating, else 1 W.
func effectiveRating(rec Record, cfg GradeConfig) float64 {

	if rec.RatingWatts > 0 {
		return rec.RatingWatts
	}
	if cfg.RatingWatts > 0 {
		return cfg.RatingWatts
	}
	return DefaultRatingWatts
}

//
// grade the four student values against the instructor-measured record.
// the resistance check compares directly against the measured reference,
// the other three against values derived from it. pure: same record,
// submission and config always grade the same way, nothing is mutated.
//
func GradeSubmission(rec Record, sub Submission, cfg GradeConfig) (GradeResult, error) {

	expected, err := ExpectedFromMeasured(rec.MeasuredOhms, effectiveRating(rec, cfg), cfg.SupplyVolts)
	if err != nil {
		return GradeResult{}, errors.Wrapf(err, "cannot grade against resistor %d", rec.Number)
	}

	mult := cfg.AlmostMultiplier
	result := GradeResult{
		Resistance: gradeQuantity(sub.MeasuredOhms, rec.MeasuredOhms, cfg.Tolerances.Resistance, mult),
		MaxVoltage: gradeQuantity(sub.MaxVolts, expected.MaxVolts, cfg.Tolerances.MaxVoltage, mult),
		Current:    gradeQuantity(sub.CurrentAmps, expected.CurrentAmps, cfg.Tolerances.Current, mult),
		Power:      gradeQuantity(sub.PowerWatts, expected.PowerWatts, cfg.Tolerances.Power, mult),
	}
	result.Overall = OverallResult(
		result.Resistance.Verdict,
		result.MaxVoltage.Verdict,
		result.Current.Verdict,
		result.Power.Verdict,
	)

	return result, nil
}

//
// aggregate per-quantity verdicts into the submission result:
// every quantity a match -> Correct; no mismatch but at least one close
// -> Almost; anything else, including a verdict outside the known three,
// -> Incorrect. total and deterministic over all verdict combinations.
//
func OverallResult(verdicts ...Verdict) Result {

	anyClose := false
	for _, v := range verdicts {
		switch v {
		case VerdictMatch:
			// keep looking
		case VerdictClose:
			anyClose = true
		default:
			return ResultIncorrect
		}
	}

	if anyClose {
		return ResultAlmost
	}
	return ResultCorrect
}
