package resistorchecker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedFromMeasured_LabSheetValues(t *testing.T) {

	// 1 kohm reference, 1 W rating, 120 V supply
	exp, err := ExpectedFromMeasured(1000, 1, 120)
	require.NoError(t, err)

	// values from the lab sheet, good to 4 significant figures
	assert.InDelta(t, 31.6228, exp.MaxVolts, 0.0001)
	assert.InDelta(t, 0.12, exp.CurrentAmps, 1e-9)
	assert.InDelta(t, 14.4, exp.PowerWatts, 1e-9)

	// and the exact formulas
	assert.InDelta(t, math.Sqrt(1000), exp.MaxVolts, 1e-12)
	assert.InDelta(t, 120.0/1000.0, exp.CurrentAmps, 1e-12)
	assert.InDelta(t, 120.0*120.0/1000.0, exp.PowerWatts, 1e-12)
}

func TestExpectedFromMeasured_RejectsBadReference(t *testing.T) {

	for _, refOhms := range []float64{0, -0.001, -47} {
		_, err := ExpectedFromMeasured(refOhms, 1, 120)
		require.Error(t, err, "reference %v ohms must be rejected", refOhms)
		require.ErrorIs(t, err, ErrBadReference)
	}
}

func TestWithinTolerance_BandEdges(t *testing.T) {

	// 5% of 100 accepts 95..105 inclusive
	require.True(t, WithinTolerance(100, 100, 5))
	require.True(t, WithinTolerance(95, 100, 5))
	require.True(t, WithinTolerance(105, 100, 5))
	require.False(t, WithinTolerance(94.999, 100, 5))
	require.False(t, WithinTolerance(105.001, 100, 5))

	// bands are symmetric for negative targets
	require.True(t, WithinTolerance(-105, -100, 5))
	require.False(t, WithinTolerance(-106, -100, 5))
}

func TestWithinTolerance_ZeroTarget(t *testing.T) {

	// no percentage band exists around zero, only zero-ish answers pass
	require.True(t, WithinTolerance(0, 0, 5))
	require.True(t, WithinTolerance(1e-13, 0, 5))
	require.True(t, WithinTolerance(-1e-13, 0, 5))
	require.False(t, WithinTolerance(1e-12, 0, 5))
	require.False(t, WithinTolerance(0.5, 0, 5))

	// and a zero target has no meaningful almost band at all
	for _, student := range []float64{0, 1e-13, 1e-12, 0.5, 100} {
		require.False(t, AlmostWithin(student, 0, 5, 2))
	}
}

func TestPredicates_MutuallyExclusive(t *testing.T) {

	targets := []float64{-250, -1, 0.001, 1, 42.5, 98.6, 1e6}
	tolerances := []float64{0.5, 2, 5, 10}
	// offsets as fractions of the target, straddling both band edges
	offsets := []float64{-0.30, -0.12, -0.101, -0.10, -0.05, -0.049, 0, 0.02, 0.05, 0.051, 0.07, 0.10, 0.101, 0.25}

	for _, target := range targets {
		for _, tol := range tolerances {
			for _, off := range offsets {
				student := target * (1 + off)
				within := WithinTolerance(student, target, tol)
				almost := AlmostWithin(student, target, tol, 2)
				require.False(t, within && almost,
					"student %v target %v tol %v%%: cannot be both within and almost", student, target, tol)
			}
		}
	}
}

func TestWithinTolerance_ToleranceMonotonic(t *testing.T) {

	pairs := []struct{ student, target float64 }{
		{106, 100},
		{94, 100},
		{31.9, 31.6228},
		{1.32, 1.2},
		{-90, -100},
	}
	// widening the band must never evict a passing value
	steps := []float64{0.1, 1, 2, 5, 7.5, 10, 20, 50}

	for _, p := range pairs {
		passed := false
		for _, tol := range steps {
			within := WithinTolerance(p.student, p.target, tol)
			if passed {
				require.True(t, within,
					"student %v target %v passed at a tighter band but failed at %v%%", p.student, p.target, tol)
			}
			passed = passed || within
		}
	}
}

func TestOverallResult_AllCombinations(t *testing.T) {

	verdicts := []Verdict{VerdictMatch, VerdictClose, VerdictMismatch}

	combos := 0
	for _, a := range verdicts {
		for _, b := range verdicts {
			for _, c := range verdicts {
				for _, d := range verdicts {
					combos++
					got := OverallResult(a, b, c, d)

					// independently restate the rule
					mismatches, closes := 0, 0
					for _, v := range []Verdict{a, b, c, d} {
						switch v {
						case VerdictMismatch:
							mismatches++
						case VerdictClose:
							closes++
						}
					}
					want := ResultCorrect
					if mismatches > 0 {
						want = ResultIncorrect
					} else if closes > 0 {
						want = ResultAlmost
					}

					require.Equal(t, want, got, "verdicts %v %v %v %v", a, b, c, d)
					require.Contains(t, []Result{ResultCorrect, ResultAlmost, ResultIncorrect}, got)
				}
			}
		}
	}
	require.Equal(t, 81, combos)

	// anything outside the known verdicts counts against the student
	require.Equal(t, ResultIncorrect, OverallResult(VerdictMatch, Verdict("garbled"), VerdictMatch, VerdictMatch))
}

func TestGradeSubmission_Scenarios(t *testing.T) {

	// reference 100 ohm, 1 W, 120 V -> Vmax=10 V, I=1.2 A, P=144 W
	rec := Record{Number: 7, NominalOhms: 100, MeasuredOhms: 100}
	cfg := DefaultGradeConfig()
	exact := Submission{ResistorNumber: 7, MeasuredOhms: 100, MaxVolts: 10, CurrentAmps: 1.2, PowerWatts: 144}

	cases := []struct {
		name        string
		change      func(s *Submission)
		wantR       Verdict
		wantVmax    Verdict
		wantOverall Result
	}{
		{
			name:        "all exact",
			change:      func(s *Submission) {},
			wantR:       VerdictMatch,
			wantVmax:    VerdictMatch,
			wantOverall: ResultCorrect,
		},
		{
			name:        "resistance 6 percent off is close",
			change:      func(s *Submission) { s.MeasuredOhms = 106 },
			wantR:       VerdictClose,
			wantVmax:    VerdictMatch,
			wantOverall: ResultAlmost,
		},
		{
			name:        "resistance 30 percent off is a mismatch",
			change:      func(s *Submission) { s.MeasuredOhms = 130 },
			wantR:       VerdictMismatch,
			wantVmax:    VerdictMatch,
			wantOverall: ResultIncorrect,
		},
		{
			name: "a close elsewhere never rescues a mismatch",
			change: func(s *Submission) {
				s.MeasuredOhms = 130 // mismatch
				s.MaxVolts = 10.8   // 8% off -> close
			},
			wantR:       VerdictMismatch,
			wantVmax:    VerdictClose,
			wantOverall: ResultIncorrect,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := exact
			tc.change(&sub)

			result, err := GradeSubmission(rec, sub, cfg)
			require.NoError(t, err)

			assert.Equal(t, tc.wantR, result.Resistance.Verdict)
			assert.Equal(t, tc.wantVmax, result.MaxVoltage.Verdict)
			assert.Equal(t, tc.wantOverall, result.Overall)

			// every check reports what it judged against
			assert.InDelta(t, 100, result.Resistance.Expected, 1e-12)
			assert.InDelta(t, 10, result.MaxVoltage.Expected, 1e-12)
			assert.InDelta(t, 1.2, result.Current.Expected, 1e-12)
			assert.InDelta(t, 144, result.Power.Expected, 1e-12)
			assert.InDelta(t, DefaultTolerancePct, result.Resistance.TolerancePct, 1e-12)

			t.Logf("%s: R=%s Vmax=%s I=%s P=%s -> %s", tc.name,
				result.Resistance.Verdict, result.MaxVoltage.Verdict,
				result.Current.Verdict, result.Power.Verdict, result.Overall)
		})
	}
}

func TestGradeSubmission_RatingResolution(t *testing.T) {

	cfg := DefaultGradeConfig()
	sub := Submission{ResistorNumber: 1, MeasuredOhms: 100, MaxVolts: 20, CurrentAmps: 1.2, PowerWatts: 144}

	// a record carrying its own rating wins over the batch default
	rec := Record{Number: 1, NominalOhms: 100, MeasuredOhms: 100, RatingWatts: 4}
	result, err := GradeSubmission(rec, sub, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 20, result.MaxVoltage.Expected, 1e-12) // sqrt(4*100)
	assert.Equal(t, VerdictMatch, result.MaxVoltage.Verdict)

	// without one the configured batch rating applies
	cfg.RatingWatts = 2
	rec.RatingWatts = 0
	result, err = GradeSubmission(rec, sub, cfg)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(200), result.MaxVoltage.Expected, 1e-12)
}

func TestGradeSubmission_Deterministic(t *testing.T) {

	rec := Record{Number: 12, NominalOhms: 100, MeasuredOhms: 98.6}
	cfg := DefaultGradeConfig()
	sub := Submission{ResistorNumber: 12, MeasuredOhms: 97.2, MaxVolts: 9.9, CurrentAmps: 1.22, PowerWatts: 146}

	first, err := GradeSubmission(rec, sub, cfg)
	require.NoError(t, err)
	second, err := GradeSubmission(rec, sub, cfg)
	require.NoError(t, err)

	// same inputs, same grades - the engine holds no state between calls
	require.Equal(t, first, second)
}

func TestGradeSubmission_RejectsBadRecord(t *testing.T) {

	// cannot come out of a catalog, but records can be built by hand
	rec := Record{Number: 99, NominalOhms: 100, MeasuredOhms: 0}
	_, err := GradeSubmission(rec, Submission{ResistorNumber: 99}, DefaultGradeConfig())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBadReference)
}
