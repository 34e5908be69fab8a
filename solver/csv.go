package solver

import "math"

// Scoring constants of the constraint strategy.
const (
	// DefaultCSVWeightMultiplier scales every constraint weight inside CSV.
	DefaultCSVWeightMultiplier = 10
	// DefaultOverBudgetWeight is the CSV weight of the point budget when it
	// is exceeded.
	DefaultOverBudgetWeight = 5
	// DefaultUnderBudgetFactor scales the logarithmic bonus for unspent
	// points. It is small so that saving points never outweighs a worse CSV.
	DefaultUnderBudgetFactor = 0.0005
)

// CSV is the constraint satisfaction value of total x against target:
//
//	exp(weight·k·min(x,target)/target) / exp(weight·k)
//
// evaluated as exp(weight·k·(min(x,target)/target − 1)) so large weights do
// not overflow. Meeting the target gives exactly 1; overshoot earns nothing
// more; anything below is in (0,1) for positive weights. target must be > 0.
func CSV(x, weight, target, k float64) float64 {
	return math.Exp(weight * k * (min(x, target)/target - 1))
}

// budgetFactor multiplies the fitness by how used points compare to total:
// a CSV penalty above budget, a small logarithmic bonus below it.
func budgetFactor(used, total int, overWeight, underFactor, k float64) float64 {
	switch {
	case used > total:
		return CSV(float64(2*total-used), overWeight, float64(total), k)
	case used < total:
		return 1 + underFactor*math.Log(float64(total+1-used))
	default:
		return 1
	}
}
