package scoring

import (
	"fmt"
	"math"

	"BoostPull/internal/domain/models"
)

// Validation methods.
const (
	MethodNoise              = "noise"
	MethodDirection          = "direction"
	MethodDirectionMagnitude = "direction_magnitude"
)

// Validate checks a prediction against the realized change.
//
// RUIDOSO predictions (and any zero prediction) are noise checks: correct iff
// the realized move stayed inside the tolerance band. Everything else must
// first match direction; a sign mismatch fails immediately. With direction
// matched, correctness requires the magnitude error to stay within twice the
// tolerance.
func Validate(predicted, actual float64, class models.Classification, tolerance float64) models.ValidationResult {
	if class == models.ClassRuidoso || predicted == 0 {
		correct := math.Abs(actual) <= tolerance
		reason := fmt.Sprintf("noise check: |%.2f| vs tolerance %.2f", actual, tolerance)
		return models.ValidationResult{Correct: correct, Method: MethodNoise, Reason: reason}
	}

	if (predicted >= 0) != (actual >= 0) {
		return models.ValidationResult{
			Correct: false,
			Method:  MethodDirection,
			Reason:  fmt.Sprintf("direction mismatch: predicted %.2f, actual %.2f", predicted, actual),
		}
	}

	err := math.Abs(predicted - actual)
	correct := err <= 2*tolerance
	return models.ValidationResult{
		Correct: correct,
		Method:  MethodDirectionMagnitude,
		Reason:  fmt.Sprintf("direction matched, magnitude error %.2f vs allowed %.2f", err, 2*tolerance),
	}
}
