package train

// Sample is one training row. Target is the binary label: 0 brilliant,
// 1 not brilliant.
type Sample struct {
	Features []float64
	Target   float64
	Weight   float64
}

type Prediction struct {
	Logit     float64
	Score     float64
	Brilliant bool
}
