// Package irt implements the three-parameter logistic (3PL) item response
// model and a maximum-likelihood estimator for latent ability. The package is
// pure: given the same observations it always produces the same estimate, and
// it holds no state between calls.
package irt

import (
	"math"
)

const (
	// ThetaMin and ThetaMax bound the ability scale. MLE diverges for
	// all-correct or all-incorrect response patterns (perfect separation),
	// so the estimate is clamped after every iteration.
	ThetaMin = -4.0
	ThetaMax = 4.0

	// DefaultTheta is the population-average prior used when a user has no
	// history in a category.
	DefaultTheta = 0.0

	maxIterations = 25
	tolerance     = 1e-4
	epsilon       = 1e-9
)

// ItemParams holds the calibrated 3PL parameters of one item.
type ItemParams struct {
	Discrimination float64 // a > 0
	Difficulty     float64 // b, unbounded
	Guessing       float64 // c in [0, 1)
}

// Observation is one scored response: the item's parameters plus whether the
// answer was correct.
type Observation struct {
	Params  ItemParams
	Correct bool
}

// Probability returns P(correct | theta) under the 3PL model:
//
//	P(theta) = c + (1 - c) / (1 + exp(-a * (theta - b)))
//
// The result lies in [c, 1) for valid parameters.
func Probability(theta float64, p ItemParams) float64 {
	return p.Guessing + (1-p.Guessing)/(1+math.Exp(-p.Discrimination*(theta-p.Difficulty)))
}

// EstimateTheta computes the maximum-likelihood ability estimate for a set of
// observations via Newton-Raphson on the log-likelihood. start seeds the
// iteration (the caller passes the previously stored estimate for faster
// convergence, or DefaultTheta).
//
// Non-convergence is not an error: iteration stops after maxIterations and the
// best iterate so far is returned. With no observations the start value is
// returned unchanged.
func EstimateTheta(observations []Observation, start float64) float64 {
	if len(observations) == 0 {
		return clamp(start)
	}

	theta := clamp(start)
	for i := 0; i < maxIterations; i++ {
		first, second := derivatives(theta, observations)
		if math.Abs(second) < epsilon {
			break
		}

		step := first / second
		theta = clamp(theta - step)
		if math.Abs(step) < tolerance {
			break
		}
	}

	return theta
}

// derivatives returns the first and second derivatives of the 3PL
// log-likelihood at theta.
//
//	L(theta) = sum_i [ r_i*ln(P_i) + (1-r_i)*ln(1-P_i) ]
func derivatives(theta float64, observations []Observation) (first, second float64) {
	for _, obs := range observations {
		p := obs.Params
		prob := Probability(theta, p)

		// Keep probabilities off the boundaries so the quotients below
		// stay finite.
		prob = math.Min(math.Max(prob, epsilon), 1-epsilon)

		// dP/dtheta for the 3PL model.
		pStar := 1 / (1 + math.Exp(-p.Discrimination*(theta-p.Difficulty)))
		dProb := (1 - p.Guessing) * p.Discrimination * pStar * (1 - pStar)

		r := 0.0
		if obs.Correct {
			r = 1.0
		}

		w := dProb / (prob * (1 - prob))
		first += w * (r - prob)
		// Fisher-scoring approximation of the second derivative; always
		// negative, which keeps the Newton step well behaved.
		second -= w * dProb
	}
	return first, second
}

func clamp(theta float64) float64 {
	if theta < ThetaMin {
		return ThetaMin
	}
	if theta > ThetaMax {
		return ThetaMax
	}
	return theta
}
