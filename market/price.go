// Package market implements the price evolution engine: the random walk
// that advances every stock's price once per tick.
package market

import (
	"math"
	"math/rand"
	"time"

	"stockmarket/state/data"
)

const (
	// maxRetries bounds the resampling loop in NextPrice. The chance of
	// drawing a non-positive price this many times in a row is negligible,
	// but the loop must not be able to run forever.
	maxRetries = 10

	// FloorPrice is the fallback when every resample still lands at or
	// below zero.
	FloorPrice = 0.01
)

// Rand is the subset of *rand.Rand the price engine needs. Tests pass a
// seeded source for deterministic walks.
type Rand interface {
	Float64() float64
}

var defaultRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// NextPrice advances value by one tick using the package-level random source.
func NextPrice(value, volatility float64) float64 {
	return NextPriceRand(defaultRand, value, volatility)
}

// NextPriceRand computes the next price for a stock with the given current
// value and volatility (a percent: 2 means at most a 2% swing per tick).
//
// The sampling is deliberately odd: a uniform draw r in [0,1) is scaled to
// [0, 2v) and folded back by 2v whenever it exceeds v, yielding a change in
// [-v, v). The fold is part of the game's observable behavior and stays
// exactly as is rather than being replaced with a symmetric uniform draw.
//
// The result is rounded to 2 decimals and is always > 0: non-positive
// candidates are resampled up to maxRetries, then FloorPrice is returned.
func NextPriceRand(rng Rand, value, volatility float64) float64 {
	v := volatility / 100
	for i := 0; i < maxRetries; i++ {
		changePercent := 2 * v * rng.Float64()
		if changePercent > v {
			changePercent -= 2 * v
		}
		next := round2(value + value*changePercent)
		if next > 0 {
			return next
		}
	}
	return FloorPrice
}

// ValueChange returns the percent change between the oldest and newest
// entries of a history window, or 0 when the window is too small or the
// endpoints are unusable.
func ValueChange(history []data.FinancialSnapshot) float64 {
	if len(history) < 2 {
		return 0
	}
	oldest := history[0].Value
	newest := history[len(history)-1].Value
	if oldest == 0 || math.IsNaN(oldest) || math.IsNaN(newest) {
		return 0
	}
	return (newest - oldest) / oldest * 100
}

// BackfillHistory synthesizes a history window for a stock by walking its
// price forward points+1 times, labeling each point as if it happened one
// tick interval apart, ending now. The stock's Value ends at the last
// generated price. This is how builtin stocks get a believable chart on
// first load.
func BackfillHistory(rng Rand, s *data.Stock, points int, interval time.Duration, now time.Time) {
	s.ValueHistory = make([]data.FinancialSnapshot, 0, points+1)
	for i := points; i >= 0; i-- {
		next := NextPriceRand(rng, s.Value, s.Volatility)
		s.ValueHistory = append(s.ValueHistory, data.FinancialSnapshot{
			Value: next,
			Date:  now.Add(-time.Duration(i) * interval).Format("15:04"),
		})
		s.Value = next
	}
	s.ValueChange = ValueChange(s.ValueHistory)
}

// FlatHistory builds a history window of the given length where every entry
// equals value, labeled one tick apart ending now. Used when a custom stock
// is created and has no past to show.
func FlatHistory(value float64, points int, interval time.Duration, now time.Time) []data.FinancialSnapshot {
	history := make([]data.FinancialSnapshot, 0, points)
	for i := points - 1; i >= 0; i-- {
		history = append(history, data.FinancialSnapshot{
			Value: value,
			Date:  now.Add(-time.Duration(i) * interval).Format("15:04"),
		})
	}
	return history
}

// Advance computes one tick for a stock: next price, history window slid by
// one, percent change recomputed. It returns a modified copy and leaves the
// input untouched.
func Advance(rng Rand, s data.Stock, now time.Time) data.Stock {
	next := NextPriceRand(rng, s.Value, s.Volatility)

	history := make([]data.FinancialSnapshot, 0, len(s.ValueHistory))
	if len(s.ValueHistory) > 0 {
		history = append(history, s.ValueHistory[1:]...)
	}
	history = append(history, data.FinancialSnapshot{Value: next, Date: now.Format("15:04")})

	s.ValueHistory = history
	s.Value = next
	s.ValueChange = round2(ValueChange(history))
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round2 rounds to 2 decimal places, the game's money precision.
func Round2(v float64) float64 { return round2(v) }
