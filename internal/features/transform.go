package features

import "math"

// Indexes within a transformed subtree.
const (
	FeatureImprovingCount = iota
	FeatureAdvantageousCount
	FeatureLosingCount
	FeatureDisadvantageousCount
	FeatureMaxN
	FeatureMaxQ
	FeatureMaxP
	FeatureRootQ
	FeatureRootP
	FeatureRootN
	FeatureBranchingFactor
	FeatureWidth1 // widths of depths 1..7 occupy FeatureWidth1..FeatureWidth1+6
)

const (
	FeatureWidthMean = FeatureWidth1 + 7 + iota
	FeatureWidthStd
	FeatureWidthMax
	FeatureHeight
)

const minWidthDepths = 8

type Subtree [SubtreeSize]float64

// Defaults is the sentinel subtree used when a subtree or subset is absent.
func Defaults() Subtree {
	var result Subtree
	result[FeatureBranchingFactor] = -1
	result[FeatureHeight] = -1
	return result
}

func Transform(e *Extraction) Subtree {
	var result Subtree
	result[FeatureImprovingCount] = float64(len(e.Improving))
	result[FeatureAdvantageousCount] = float64(len(e.Advantageous))
	result[FeatureLosingCount] = float64(len(e.Losing))
	result[FeatureDisadvantageousCount] = float64(len(e.Disadvantageous))
	result[FeatureMaxN] = float64(e.MaxN)
	result[FeatureMaxQ] = e.MaxQ
	result[FeatureMaxP] = e.MaxP
	result[FeatureRootQ] = e.RootQ
	result[FeatureRootP] = e.RootP
	result[FeatureRootN] = float64(e.RootN)
	result[FeatureBranchingFactor] = e.BranchingFactor

	var widths = widthList(e)
	copy(result[FeatureWidth1:FeatureWidth1+7], widths[1:minWidthDepths])
	var mean, std = meanStd(widths)
	result[FeatureWidthMean] = mean
	result[FeatureWidthStd] = std
	result[FeatureWidthMax] = maxOf(widths)
	result[FeatureHeight] = float64(e.Height)
	return result
}

// widthList returns widths by depth from 0, zero padded to minWidthDepths.
func widthList(e *Extraction) []float64 {
	var size = e.Height + 1
	if size < minWidthDepths {
		size = minWidthDepths
	}
	var result = make([]float64, size)
	for depth, count := range e.Width {
		if depth >= 0 && depth < size {
			result[depth] = float64(count)
		}
	}
	return result
}

func meanStd(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(values)))
	return
}

func maxOf(values []float64) float64 {
	var result = values[0]
	for _, v := range values[1:] {
		if v > result {
			result = v
		}
	}
	return result
}
