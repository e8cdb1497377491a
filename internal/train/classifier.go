package train

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ChizhovVadim/brilliant/internal/domain"
	"github.com/ChizhovVadim/brilliant/internal/ml"
)

// NewSamples labels rows with the binary target and balances the classes.
func NewSamples(rows []domain.MoveSample) ([]Sample, error) {
	var labels = make([]int, len(rows))
	for i := range rows {
		if !rows[i].HasLabel {
			return nil, fmt.Errorf("move %v has no label", rows[i].Name)
		}
		labels[i] = domain.BinaryLabel(rows[i].Label)
	}
	var weights = ClassWeights(labels)
	var result = make([]Sample, len(rows))
	for i := range rows {
		result[i] = Sample{
			Features: rows[i].Features,
			Target:   float64(labels[i]),
			Weight:   weights[labels[i]],
		}
	}
	return result, nil
}

// ClassWeights returns n / count_c / numClasses for every class present.
func ClassWeights(labels []int) map[int]float64 {
	var counts = make(map[int]int)
	for _, label := range labels {
		counts[label]++
	}
	var result = make(map[int]float64, len(counts))
	for label, count := range counts {
		result[label] = float64(len(labels)) / float64(count) / float64(len(counts))
	}
	return result
}

// Score is the brilliance probability of a logit.
func Score(logit float64) float64 {
	return ml.Sigmoid(-logit)
}

func IsBrilliant(logit float64) bool {
	return logit < 0
}

// PredictAll scores rows in input order with threads model copies.
func PredictAll(m *Model, rows [][]float64, threads int) []Prediction {
	var result = make([]Prediction, len(rows))
	var index int32 = -1
	var wg = &sync.WaitGroup{}
	for t := 0; t < max(1, threads); t++ {
		wg.Add(1)
		go func(m *Model) {
			defer wg.Done()
			for {
				var i = int(atomic.AddInt32(&index, 1))
				if i >= len(rows) {
					break
				}
				var logit = m.Predict(rows[i])
				result[i] = Prediction{
					Logit:     logit,
					Score:     Score(logit),
					Brilliant: IsBrilliant(logit),
				}
			}
		}(m.ThreadCopy())
	}
	wg.Wait()
	return result
}

// BrilliantProb scores a single row; it uses m's buffers.
func (m *Model) BrilliantProb(features []float64) float64 {
	return Score(m.Predict(features))
}
