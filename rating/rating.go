// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package rating computes team ratings after a 2v2 game.
//
// The scheme is chess Elo adapted to teams: each side is rated by the
// average of its players, and the K factor grows with the goal difference
// so that a 11-2 counts for more than a 11-10.
package rating

import "math"

// K is the base adjustment factor.
const K = 32

// Average returns the mean of the given ratings, or 0 for none.
func Average(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// Expected returns the expected score of a side rated a against a side rated b.
func Expected(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400.0))
}

// Update returns the new team ratings for the winning and losing sides.
// Every player of a side is assigned the side's new rating.
func Update(winners, losers float64, score1, score2 int) (newWinners, newLosers float64) {
	diff := score1 - score2
	if diff < 0 {
		diff = -diff
	}
	constant := float64(K + diff)
	newWinners = winners + constant*(1-Expected(winners, losers))
	newLosers = losers + constant*(0-Expected(losers, winners))
	return newWinners, newLosers
}
