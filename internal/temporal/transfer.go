// Package temporal rescales canonical 12-hour predictions to arbitrary
// horizons.
//
// Two models coexist. Cycle creation uses LinearScale, a clamped pro-rata
// ratio kept for compatibility with historical cycle records. The scenario
// simulator and its calibration use Scale, the 3-phase non-linear transfer
// function. The two disagree away from the 12-hour point; calibration output
// is the mechanism intended to converge them, so both stay exposed here
// rather than silently picking one.
package temporal

import (
	"math"
	"time"

	"BoostPull/internal/domain/models"
)

// CanonicalHorizonHours is the horizon every base prediction is expressed at.
const CanonicalHorizonHours = 12.0

// decayRate is the phase-3 exponential decay per hour past reversion start,
// before the mode boost.
const decayRate = 0.045

// PhaseParams parameterizes the transfer function per classification.
type PhaseParams struct {
	MomentumHalfLife float64 // hours, end of phase 1
	LogAlpha         float64 // phase-2 logarithmic growth coefficient
	ReversionStart   float64 // hours, end of phase 2
	MaxMultiplier    float64 // hard cap on the scale factor
}

// ModeParams parameterizes the transfer function per algorithm mode.
type ModeParams struct {
	Alpha          float64 // phase-1 amplitude
	ReversionBoost float64 // phase-3 decay multiplier
}

var classParams = map[models.Classification]PhaseParams{
	models.ClassInvertible: {MomentumHalfLife: 18, LogAlpha: 0.35, ReversionStart: 48, MaxMultiplier: 2.2},
	models.ClassApalancado: {MomentumHalfLife: 12, LogAlpha: 0.25, ReversionStart: 36, MaxMultiplier: 1.8},
}

var modeParams = map[string]ModeParams{
	models.ModeNormal:      {Alpha: 1.0, ReversionBoost: 1.0},
	models.ModeSpeculative: {Alpha: 1.15, ReversionBoost: 1.25},
}

// Scale computes the non-linear horizon scale factor Φ(hours, class, mode).
// RUIDOSO always scales to 0. The function is continuous at both phase
// boundaries; that is a required property, not an accident of the constants.
func Scale(hours float64, class models.Classification, mode string) float64 {
	if class == models.ClassRuidoso || hours <= 0 {
		return 0
	}
	cp, ok := classParams[class]
	if !ok {
		return 0
	}
	mp, ok := modeParams[mode]
	if !ok {
		mp = modeParams[models.ModeNormal]
	}

	if hours <= cp.MomentumHalfLife {
		return phase1(hours, cp, mp)
	}
	if hours <= cp.ReversionStart {
		return phase2(hours, cp, mp)
	}
	return phase3(hours, cp, mp)
}

// phase1: momentum buildup with a mild sinusoidal swell that vanishes at the
// half-life boundary, keeping the junction with phase 2 continuous.
func phase1(hours float64, cp PhaseParams, mp ModeParams) float64 {
	v := hours / CanonicalHorizonHours * (1 + 0.08*math.Sin(math.Pi*hours/cp.MomentumHalfLife)) * mp.Alpha
	return math.Min(v, cp.MaxMultiplier)
}

// phase2: logarithmic growth from the phase-1 value at the half-life.
func phase2(hours float64, cp PhaseParams, mp ModeParams) float64 {
	base := phase1(cp.MomentumHalfLife, cp, mp)
	progress := (hours - cp.MomentumHalfLife) / (cp.ReversionStart - cp.MomentumHalfLife)
	peak := base * (1 + cp.LogAlpha*math.Log2(1+progress))
	return math.Min(peak, cp.MaxMultiplier)
}

// phase3: exponential reversion from the phase-2 value at reversion start,
// floored so the signal never fully vanishes.
func phase3(hours float64, cp PhaseParams, mp ModeParams) float64 {
	start := phase2(cp.ReversionStart, cp, mp)
	v := start * math.Exp(-decayRate*mp.ReversionBoost*(hours-cp.ReversionStart))
	floor := CanonicalHorizonHours / hours * 0.40
	return math.Max(v, floor)
}

// LinearScale is the legacy pro-rata factor applied at cycle creation:
// clamp(duration/12h, 0.1, 2.0).
func LinearScale(duration time.Duration) float64 {
	ratio := duration.Hours() / CanonicalHorizonHours
	if ratio < 0.1 {
		return 0.1
	}
	if ratio > 2.0 {
		return 2.0
	}
	return ratio
}

// ClassParams exposes the per-classification parameters, mainly for
// calibration reporting.
func ClassParams(class models.Classification) (PhaseParams, bool) {
	p, ok := classParams[class]
	return p, ok
}
