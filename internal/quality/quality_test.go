package quality

import (
	"testing"

	"github.com/ChizhovVadim/brilliant/internal/domain"
)

// firstFeature treats the first feature as the probability.
type firstFeature struct{}

func (firstFeature) BrilliantProb(features []float64) float64 { return features[0] }

func row(label int, prob float64) domain.MoveSample {
	return domain.MoveSample{
		MoveInfo: domain.MoveInfo{Label: label, HasLabel: true},
		Features: []float64{prob},
	}
}

func TestRunQuality(t *testing.T) {
	var rows = []domain.MoveSample{
		row(0, 0.9),
		row(0, 0.2),
		row(1, 0.6),
		row(2, 0.1),
		row(1, 0.5),
	}
	var report, err = RunQuality(firstFeature{}, rows)
	if err != nil {
		t.Fatal(err)
	}
	if report.TruePositives != 1 || report.FalseNegatives != 1 ||
		report.FalsePositives != 1 || report.TrueNegatives != 2 {
		t.Errorf("report %+v", report)
	}
	if report.Accuracy() != 0.6 || report.Precision() != 0.5 || report.Recall() != 0.5 {
		t.Errorf("accuracy %v precision %v recall %v", report.Accuracy(), report.Precision(), report.Recall())
	}
	var mse = (0.01 + 0.64 + 0.36 + 0.01 + 0.25) / 5
	if diff := report.MSE - mse; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("mse %v, want %v", report.MSE, mse)
	}
}

func TestRunQualityErrors(t *testing.T) {
	if _, err := RunQuality(firstFeature{}, nil); err == nil {
		t.Error("empty rows accepted")
	}
	var unlabelled = domain.MoveSample{Features: []float64{0.5}}
	if _, err := RunQuality(firstFeature{}, []domain.MoveSample{unlabelled}); err == nil {
		t.Error("unlabelled row accepted")
	}
	if (Report{}).Precision() != 0 {
		t.Error("empty precision")
	}
}
