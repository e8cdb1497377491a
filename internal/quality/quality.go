package quality

import (
	"errors"
	"fmt"

	"github.com/ChizhovVadim/brilliant/internal/domain"
)

type IEvaluator interface {
	BrilliantProb(features []float64) float64
}

// Report counts decisions against labels, brilliant being the positive class.
type Report struct {
	Count          int
	TruePositives  int
	FalsePositives int
	TrueNegatives  int
	FalseNegatives int
	MSE            float64
}

func RunQuality(evaluator IEvaluator, rows []domain.MoveSample) (Report, error) {
	if len(rows) == 0 {
		return Report{}, errors.New("no rows")
	}
	var report Report
	var sumSq float64
	for i := range rows {
		var row = &rows[i]
		if !row.HasLabel {
			return Report{}, fmt.Errorf("move %v has no label", row.Name)
		}
		var target float64
		var brilliant = domain.BinaryLabel(row.Label) == domain.LabelBrilliant
		if brilliant {
			target = 1
		}
		var prob = evaluator.BrilliantProb(row.Features)
		var x = prob - target
		sumSq += x * x
		report.Count++

		var predicted = prob > 0.5
		switch {
		case predicted && brilliant:
			report.TruePositives++
		case predicted:
			report.FalsePositives++
		case brilliant:
			report.FalseNegatives++
		default:
			report.TrueNegatives++
		}
	}
	report.MSE = sumSq / float64(report.Count)
	return report, nil
}

func (r Report) Accuracy() float64 {
	return ratio(r.TruePositives+r.TrueNegatives, r.Count)
}

func (r Report) Precision() float64 {
	return ratio(r.TruePositives, r.TruePositives+r.FalsePositives)
}

func (r Report) Recall() float64 {
	return ratio(r.TruePositives, r.TruePositives+r.FalseNegatives)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
