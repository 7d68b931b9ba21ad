package cycle

import "BoostPull/internal/domain/models"

// AggregateMetrics computes overall and per-classification accuracy over a
// result set. Excluded asset ids are dropped from the statistics but remain
// in the cycle record.
func AggregateMetrics(results []models.AssetResult, excluded []string) *models.CycleMetrics {
	skip := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}

	m := &models.CycleMetrics{
		ByClass: map[models.Classification]models.ClassMetrics{},
	}
	var errSum float64
	for _, r := range results {
		if _, ok := skip[r.AssetID]; ok {
			continue
		}
		m.Total++
		cm := m.ByClass[r.Classification]
		cm.Total++
		if r.Correct {
			m.Correct++
			cm.Correct++
		}
		m.ByClass[r.Classification] = cm

		errSum += r.AbsError
		if r.AbsError > m.MaxError {
			m.MaxError = r.AbsError
		}
	}

	if m.Total > 0 {
		m.SuccessRate = float64(m.Correct) / float64(m.Total) * 100
		m.AvgError = errSum / float64(m.Total)
	}
	for class, cm := range m.ByClass {
		if cm.Total > 0 {
			cm.SuccessRate = float64(cm.Correct) / float64(cm.Total) * 100
		}
		m.ByClass[class] = cm
	}
	return m
}
