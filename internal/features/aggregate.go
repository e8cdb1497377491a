package features

import "math"

// Aggregate returns the elementwise mean, std, max and min of subtrees,
// indexed by AggMean..AggMin. An empty input gives four Defaults.
func Aggregate(subtrees []Subtree) [AggCount]Subtree {
	var result [AggCount]Subtree
	if len(subtrees) == 0 {
		for i := range result {
			result[i] = Defaults()
		}
		return result
	}
	var n = float64(len(subtrees))
	result[AggMax] = subtrees[0]
	result[AggMin] = subtrees[0]
	for _, s := range subtrees {
		for i, v := range s {
			result[AggMean][i] += v
			result[AggMax][i] = math.Max(result[AggMax][i], v)
			result[AggMin][i] = math.Min(result[AggMin][i], v)
		}
	}
	for i := range result[AggMean] {
		result[AggMean][i] /= n
	}
	for _, s := range subtrees {
		for i, v := range s {
			var d = v - result[AggMean][i]
			result[AggStd][i] += d * d
		}
	}
	for i := range result[AggStd] {
		result[AggStd][i] = math.Sqrt(result[AggStd][i] / n)
	}
	return result
}
