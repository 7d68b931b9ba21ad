package scenario

import (
	"math"
	"sort"
	"time"

	"BoostPull/internal/domain/models"
)

// materialDiffPct is the relative price difference below which the resolved
// completion price adds no information over the last recorded observation.
const materialDiffPct = 0.1

// windowEndFraction marks the tail of the cycle window; an observation in
// this tail already represents the end price.
const windowEndFraction = 0.95

type pathPoint struct {
	t     time.Time
	price float64
}

// PricePath is the reconstructed per-asset price trajectory across one
// cycle: the snapshot price at the start, any recorded intra-cycle
// observations, and the resolved completion price at the end.
type PricePath struct {
	points []pathPoint
}

// BuildPath reconstructs the path for one asset. The end price is appended
// only when it is materially different from the last known point and no
// observation already sits near the window end.
func BuildPath(startPrice float64, start time.Time, obs []models.PriceObservation, endPrice float64, end time.Time) *PricePath {
	points := make([]pathPoint, 0, len(obs)+2)
	points = append(points, pathPoint{t: start, price: startPrice})
	for _, o := range obs {
		if o.Price <= 0 || o.Timestamp.Before(start) || o.Timestamp.After(end) {
			continue
		}
		points = append(points, pathPoint{t: o.Timestamp, price: o.Price})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].t.Before(points[j].t) })

	if endPrice > 0 {
		last := points[len(points)-1]
		window := end.Sub(start)
		nearEnd := window > 0 && last.t.Sub(start) >= time.Duration(float64(window)*windowEndFraction)
		diffPct := math.Abs(endPrice-last.price) / last.price * 100
		if !nearEnd || diffPct > materialDiffPct {
			points = append(points, pathPoint{t: end, price: endPrice})
		}
	}

	return &PricePath{points: points}
}

// PriceAt interpolates the price at t: linear between the two bracketing
// points, clamped to the nearest endpoint outside the recorded range.
func (p *PricePath) PriceAt(t time.Time) float64 {
	if len(p.points) == 0 {
		return 0
	}
	if !t.After(p.points[0].t) {
		return p.points[0].price
	}
	last := p.points[len(p.points)-1]
	if !t.Before(last.t) {
		return last.price
	}
	for i := 1; i < len(p.points); i++ {
		if t.Before(p.points[i].t) {
			lo, hi := p.points[i-1], p.points[i]
			span := hi.t.Sub(lo.t).Seconds()
			if span <= 0 {
				return hi.price
			}
			frac := t.Sub(lo.t).Seconds() / span
			return lo.price + (hi.price-lo.price)*frac
		}
	}
	return last.price
}

// Points returns the number of path points, mainly for diagnostics.
func (p *PricePath) Points() int { return len(p.points) }
