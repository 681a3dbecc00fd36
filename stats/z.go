package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.UnitNormal
	return dist.Quantile((1 + confidenceInterval/100) / 2)
}

// WinRate returns the fraction of games won and the half-width of its
// normal-approximation confidence interval at the given level (0-100).
func WinRate(wins float64, games int, confidenceInterval float64) (float64, float64) {
	if games == 0 {
		return 0, 0
	}
	p := wins / float64(games)
	return p, ZVal(confidenceInterval) * math.Sqrt(p*(1-p)/float64(games))
}
