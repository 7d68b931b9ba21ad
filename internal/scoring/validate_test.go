package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"BoostPull/internal/domain/models"
)

func TestValidateDirectionMismatch(t *testing.T) {
	r := Validate(10, -2, models.ClassInvertible, 5)
	assert.False(t, r.Correct)
	assert.Equal(t, MethodDirection, r.Method)
}

func TestValidateDirectionMagnitude(t *testing.T) {
	// direction matched, error 1 within the doubled tolerance of 10
	r := Validate(10, 11, models.ClassInvertible, 5)
	assert.True(t, r.Correct)
	assert.Equal(t, MethodDirectionMagnitude, r.Method)

	// error 11 exceeds the doubled tolerance
	r = Validate(10, 21, models.ClassInvertible, 5)
	assert.False(t, r.Correct)
	assert.Equal(t, MethodDirectionMagnitude, r.Method)

	// boundary: exactly twice the tolerance passes
	r = Validate(10, 20, models.ClassInvertible, 5)
	assert.True(t, r.Correct)
}

func TestValidateNoise(t *testing.T) {
	// ruidoso expects the market to stay flat
	r := Validate(0, 3, models.ClassRuidoso, 5)
	assert.True(t, r.Correct)
	assert.Equal(t, MethodNoise, r.Method)

	r = Validate(0, -6, models.ClassRuidoso, 5)
	assert.False(t, r.Correct)

	// a zero prediction falls back to the noise check regardless of class
	r = Validate(0, 2, models.ClassApalancado, 5)
	assert.True(t, r.Correct)
	assert.Equal(t, MethodNoise, r.Method)
}

func TestValidateNegativePredictions(t *testing.T) {
	// both negative: direction matched
	r := Validate(-8, -7, models.ClassApalancado, 5)
	assert.True(t, r.Correct)
	assert.Equal(t, MethodDirectionMagnitude, r.Method)

	r = Validate(-8, 4, models.ClassApalancado, 5)
	assert.False(t, r.Correct)
	assert.Equal(t, MethodDirection, r.Method)
}
