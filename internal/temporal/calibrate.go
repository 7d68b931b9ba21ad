package temporal

import (
	"math"
	"sort"

	"BoostPull/internal/domain/models"
)

// calibrationThreshold is the modeled-vs-observed divergence that flags a
// bucket for replacement.
const calibrationThreshold = 0.15

// Suggestion flags one (classification, horizon) bucket where the modeled
// scale factor diverges from the empirically observed actual/base ratio.
type Suggestion struct {
	Classification models.Classification `json:"classification"`
	Mode           string                `json:"mode"`
	DurationHours  int                   `json:"durationHours"`
	Modeled        float64               `json:"modeled"`
	Observed       float64               `json:"observed"`
	Samples        int                   `json:"samples"`
}

type bucketKey struct {
	class models.Classification
	mode  string
	hours int
}

// Calibrate compares the transfer function against observed outcomes across
// historical completed cycles, bucketed per (classification, rounded
// duration hours). Buckets whose modeled and observed scale factors differ
// by more than the threshold produce a Suggestion.
func Calibrate(cycles []*models.Cycle) []Suggestion {
	type bucket struct {
		sum float64
		n   int
	}
	buckets := make(map[bucketKey]*bucket)

	for _, c := range cycles {
		if c == nil || c.Status != models.CycleCompleted {
			continue
		}
		hours := int(math.Round(c.Duration().Hours()))
		if hours <= 0 {
			continue
		}
		base := make(map[string]float64, len(c.Snapshot))
		class := make(map[string]models.Classification, len(c.Snapshot))
		for _, e := range c.Snapshot {
			base[e.Asset.ID] = e.BasePrediction
			class[e.Asset.ID] = e.Score.Classification
		}
		for _, r := range c.Results {
			b := base[r.AssetID]
			cl := class[r.AssetID]
			if cl == models.ClassRuidoso || b == 0 {
				continue
			}
			key := bucketKey{class: cl, mode: c.Mode, hours: hours}
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.sum += r.Actual / b
			bk.n++
		}
	}

	var out []Suggestion
	for key, bk := range buckets {
		if bk.n == 0 {
			continue
		}
		observed := bk.sum / float64(bk.n)
		modeled := Scale(float64(key.hours), key.class, key.mode)
		if math.Abs(modeled-observed) > calibrationThreshold {
			out = append(out, Suggestion{
				Classification: key.class,
				Mode:           key.mode,
				DurationHours:  key.hours,
				Modeled:        modeled,
				Observed:       observed,
				Samples:        bk.n,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Classification != out[j].Classification {
			return out[i].Classification < out[j].Classification
		}
		return out[i].DurationHours < out[j].DurationHours
	})
	return out
}
