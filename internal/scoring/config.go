package scoring

import (
	"fmt"
	"math"

	"BoostPull/internal/domain/models"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

const (
	metaWeightTolerance  = 0.01
	groupWeightTolerance = 0.05
)

var validate = validator.New()

// ConfigViolations carries every invariant violation found in an
// AlgorithmConfig. Violations are collected rather than failing fast so a
// config editor can display all of them at once.
type ConfigViolations struct {
	Violations []string
}

func (e *ConfigViolations) Error() string {
	return fmt.Sprintf("algorithm config invalid: %d violation(s)", len(e.Violations))
}

// NewAlgorithmConfig constructs a fully-defaulted config for the given mode.
// Every documented field is present after construction; the speculative mode
// applies its own overrides on top of the shared defaults.
func NewAlgorithmConfig(mode string) (*models.AlgorithmConfig, error) {
	cfg := &models.AlgorithmConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	cfg.Mode = mode

	if mode == models.ModeSpeculative {
		cfg.MetaWeights = models.MetaWeights{Potential: 0.65, Resistance: 0.35}
		cfg.Classification.InvertibleMinBoost = 0.60
		cfg.Classification.InvertibleMaxMarketCap = 1_000_000_000
		cfg.Prediction.InvertibleTarget = 20
		cfg.Prediction.ApalancadoTarget = 10
		cfg.Prediction.MagnitudeTolerance = 8
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig checks every documented invariant and returns a
// ConfigViolations error listing all failures, or nil when the config is
// sound.
func ValidateConfig(cfg *models.AlgorithmConfig) error {
	var v []string

	if err := validate.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				v = append(v, fmt.Sprintf("field %s fails %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			v = append(v, err.Error())
		}
	}

	metaSum := cfg.MetaWeights.Potential + cfg.MetaWeights.Resistance
	if math.Abs(metaSum-1.0) > metaWeightTolerance {
		v = append(v, fmt.Sprintf("metaWeights must sum to 1.0 ±%.2f, got %.4f", metaWeightTolerance, metaSum))
	}

	pw := cfg.PotentialWeights
	potSum := pw.AtlProximity + pw.VolumeSurge + pw.SocialMomentum + pw.NewsSentiment + pw.ReboundRecency
	if math.Abs(potSum-1.0) > groupWeightTolerance {
		v = append(v, fmt.Sprintf("potentialWeights must sum to 1.0 ±%.2f, got %.4f", groupWeightTolerance, potSum))
	}

	rw := cfg.ResistanceWeights
	resSum := rw.LeverageRatio + rw.MarketCapSize + rw.VolatilityNoise + rw.FearOverlap
	if math.Abs(resSum-1.0) > groupWeightTolerance {
		v = append(v, fmt.Sprintf("resistanceWeights must sum to 1.0 ±%.2f, got %.4f", groupWeightTolerance, resSum))
	}

	if cfg.Classification.InvertibleMinBoost <= cfg.Classification.ApalancadoMinBoost {
		v = append(v, fmt.Sprintf("invertibleMinBoost (%.2f) must exceed apalancadoMinBoost (%.2f)",
			cfg.Classification.InvertibleMinBoost, cfg.Classification.ApalancadoMinBoost))
	}

	th := cfg.Thresholds
	if !(th.LargeCap > th.MidCap && th.MidCap > th.SmallCap && th.SmallCap > th.MicroCap) {
		v = append(v, "market cap thresholds must be strictly descending large > mid > small > micro")
	}

	if len(v) > 0 {
		return &ConfigViolations{Violations: v}
	}
	return nil
}
