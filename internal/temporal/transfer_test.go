package temporal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"BoostPull/internal/domain/models"
)

func TestScaleRuidosoAlwaysZero(t *testing.T) {
	for _, h := range []float64{0.5, 6, 12, 24, 48, 100} {
		assert.Zero(t, Scale(h, models.ClassRuidoso, models.ModeNormal), "hours %.1f", h)
	}
}

func TestScaleNonPositiveHours(t *testing.T) {
	assert.Zero(t, Scale(0, models.ClassInvertible, models.ModeNormal))
	assert.Zero(t, Scale(-3, models.ClassInvertible, models.ModeNormal))
}

func TestScaleContinuousAtPhaseBoundaries(t *testing.T) {
	const eps = 1e-6
	classes := []models.Classification{models.ClassInvertible, models.ClassApalancado}
	modes := []string{models.ModeNormal, models.ModeSpeculative}

	for _, class := range classes {
		cp, ok := ClassParams(class)
		assert.True(t, ok)
		for _, mode := range modes {
			for _, boundary := range []float64{cp.MomentumHalfLife, cp.ReversionStart} {
				before := Scale(boundary-eps, class, mode)
				after := Scale(boundary+eps, class, mode)
				assert.InDelta(t, before, after, 1e-3,
					"discontinuity at %.0fh for %s/%s", boundary, class, mode)
			}
		}
	}
}

func TestScaleCanonicalHorizonNearUnity(t *testing.T) {
	// at the canonical 12h horizon the factor stays close to 1; the phase-1
	// sinusoidal swell keeps it from being exactly 1
	v := Scale(CanonicalHorizonHours, models.ClassInvertible, models.ModeNormal)
	assert.InDelta(t, 1.0, v, 0.1)

	v = Scale(CanonicalHorizonHours, models.ClassApalancado, models.ModeNormal)
	assert.InDelta(t, 1.0, v, 0.1)
}

func TestScaleRespectsMaxMultiplier(t *testing.T) {
	for _, class := range []models.Classification{models.ClassInvertible, models.ClassApalancado} {
		cp, _ := ClassParams(class)
		for h := 1.0; h <= 72; h += 0.5 {
			v := Scale(h, class, models.ModeSpeculative)
			assert.LessOrEqual(t, v, cp.MaxMultiplier, "class %s hours %.1f", class, h)
		}
	}
}

func TestScaleUnknownModeFallsBackToNormal(t *testing.T) {
	assert.Equal(t,
		Scale(24, models.ClassInvertible, models.ModeNormal),
		Scale(24, models.ClassInvertible, "bogus"))
}

func TestScaleReversionDecaysButFloors(t *testing.T) {
	cp, _ := ClassParams(models.ClassApalancado)
	atStart := Scale(cp.ReversionStart, models.ClassApalancado, models.ModeNormal)
	later := Scale(cp.ReversionStart+24, models.ClassApalancado, models.ModeNormal)
	assert.Less(t, later, atStart)

	// far out the floor holds the factor above zero
	far := Scale(500, models.ClassApalancado, models.ModeNormal)
	assert.Greater(t, far, 0.0)
	floor := CanonicalHorizonHours / 500 * 0.40
	assert.GreaterOrEqual(t, far, floor-1e-12)
}

func TestLinearScaleClamps(t *testing.T) {
	assert.Equal(t, 1.0, LinearScale(12*time.Hour))
	assert.Equal(t, 0.5, LinearScale(6*time.Hour))
	assert.Equal(t, 2.0, LinearScale(100*time.Hour)) // upper clamp
	assert.Equal(t, 0.1, LinearScale(time.Minute))   // lower clamp
}

func TestSpeculativeAmplifiesEarlyPhase(t *testing.T) {
	normal := Scale(6, models.ClassInvertible, models.ModeNormal)
	amplified := Scale(6, models.ClassInvertible, models.ModeSpeculative)
	assert.InDelta(t, normal*1.15, amplified, 1e-9)
	assert.True(t, math.Abs(amplified-normal) > 0)
}
