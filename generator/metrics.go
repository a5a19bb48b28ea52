package generator

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// discountedReturns computes, for each timestep, the discounted sum of the
// rewards from that step forward: y[t] = x[t] + gamma*y[t+1]. Equivalent to
// a single-pole filter over the reversed sequence.
func discountedReturns(rewards []float64, gamma float64) []float64 {
	out := make([]float64, len(rewards))
	acc := 0.0
	for t := len(rewards) - 1; t >= 0; t-- {
		acc = rewards[t] + gamma*acc
		out[t] = acc
	}
	return out
}

// episodeMetrics derives the per-episode series the side channels consume.
func episodeMetrics(rewards []float64, epsteps int, seconds float64, gamma float64) map[string]float64 {
	fps := float64(epsteps) / (seconds + 1e-6)
	return map[string]float64{
		"return":            floats.Sum(rewards),
		"return_discounted": stat.Mean(discountedReturns(rewards, gamma), nil),
		"episode_length":    float64(epsteps),
		"fps":               fps,
	}
}
