package ml

import "math"

type IModelCost interface {
	Cost(predicted, target float64) float64
	CostPrime(predicted, target float64) float64
}

// LogitCrossEntropyCost is binary cross-entropy of sigmoid(predicted).
type LogitCrossEntropyCost struct{}

func (*LogitCrossEntropyCost) Cost(predicted, target float64) float64 {
	// max(x,0) - x*t + log(1+exp(-|x|))
	return math.Max(predicted, 0) - predicted*target + math.Log1p(math.Exp(-math.Abs(predicted)))
}

func (*LogitCrossEntropyCost) CostPrime(predicted, target float64) float64 {
	return Sigmoid(predicted) - target
}
