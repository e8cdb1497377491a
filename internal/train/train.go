package train

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ChizhovVadim/brilliant/internal/ml"
)

type Config struct {
	Epochs       int
	Threads      int
	BatchSize    int
	TrainSplit   float64
	Seed         int64
	LearningRate float64
	// NetPath receives the best network; empty disables saving.
	NetPath string
}

type Result struct {
	BestEpoch          int
	ValidationCost     float64
	ValidationAccuracy float64
}

type evaluation struct {
	cost     float64
	accuracy float64
}

// Train fits mainModel and leaves it with the weights of the epoch with the
// lowest validation cost.
func Train(
	ctx context.Context,
	samples []Sample,
	cfg Config,
	mainModel *Model,
	logger *zap.SugaredLogger,
) (Result, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if len(samples) == 0 {
		return Result{}, errors.New("no training samples")
	}
	logger.Infow("train started", "samples", len(samples), "epochs", cfg.Epochs)
	defer logger.Infow("train finished")

	var batchSize = cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 256
	}
	var learningRate = cfg.LearningRate
	if learningRate <= 0 {
		learningRate = ml.DefaultLearningRate
	}
	var threads = max(1, cfg.Threads)

	var rnd = rand.New(rand.NewSource(cfg.Seed))
	samples = append([]Sample(nil), samples...)
	shuffle(rnd, samples)
	var training, validation = split(samples, cfg.TrainSplit)
	logger.Infow("dataset split", "training", len(training), "validation", len(validation))

	var models = make([]*Model, threads)
	models[0] = mainModel
	for i := 1; i < len(models); i++ {
		models[i] = mainModel.ThreadCopy()
	}

	var result Result
	var best [][]float64
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		shuffle(rnd, training)
		for i := 0; i < len(training); i += batchSize {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			var batch = training[i:min(i+batchSize, len(training))]
			trainBatch(batch, models)
			applyGradients(models, learningRate)
		}
		var eval = evaluate(validation, models)
		logger.Infow("epoch finished", "epoch", epoch,
			"validation_cost", eval.cost, "validation_accuracy", eval.accuracy)
		if best == nil || eval.cost < result.ValidationCost {
			result = Result{BestEpoch: epoch, ValidationCost: eval.cost, ValidationAccuracy: eval.accuracy}
			best = mainModel.snapshot()
			if cfg.NetPath != "" {
				if err := mainModel.Save(cfg.NetPath); err != nil {
					return result, err
				}
			}
		}
	}
	if best != nil {
		mainModel.restore(best)
	}
	logger.Infow("best epoch", "epoch", result.BestEpoch,
		"validation_cost", result.ValidationCost, "validation_accuracy", result.ValidationAccuracy)
	return result, nil
}

// split keeps trainSplit of samples for training. Without a validation
// part the training samples are evaluated instead.
func split(samples []Sample, trainSplit float64) (training, validation []Sample) {
	if trainSplit <= 0 || trainSplit >= 1 {
		return samples, samples
	}
	if len(samples) < 2 {
		return samples, samples
	}
	var trainSize = int(float64(len(samples)) * trainSplit)
	trainSize = max(1, min(trainSize, len(samples)-1))
	return samples[:trainSize], samples[trainSize:]
}

func shuffle(rnd *rand.Rand, training []Sample) {
	rnd.Shuffle(len(training), func(i, j int) {
		training[i], training[j] = training[j], training[i]
	})
}

func trainBatch(samples []Sample, models []*Model) {
	var index int32 = -1
	var wg = &sync.WaitGroup{}
	for i := range models {
		wg.Add(1)
		go func(m *Model) {
			defer wg.Done()
			for {
				var i = int(atomic.AddInt32(&index, 1))
				if i >= len(samples) {
					break
				}
				m.Train(&samples[i])
			}
		}(models[i])
	}
	wg.Wait()
}

func applyGradients(models []*Model, learningRate float64) {
	for i := 1; i < len(models); i++ {
		models[i].AddGradients(models[0])
	}
	models[0].ApplyGradients(learningRate)
}

func evaluate(samples []Sample, models []*Model) evaluation {
	var index int32 = -1
	var wg = &sync.WaitGroup{}
	var totalCost, totalWeight float64
	var correct int
	var mu = &sync.Mutex{}
	for i := range models {
		wg.Add(1)
		go func(m *Model) {
			defer wg.Done()
			var localCost, localWeight float64
			var localCorrect int
			for {
				var i = int(atomic.AddInt32(&index, 1))
				if i >= len(samples) {
					break
				}
				var sample = &samples[i]
				var logit = m.Predict(sample.Features)
				localCost += sample.Weight * m.cost.Cost(logit, sample.Target)
				localWeight += sample.Weight
				if IsBrilliant(logit) == (sample.Target < 0.5) {
					localCorrect++
				}
			}
			mu.Lock()
			totalCost += localCost
			totalWeight += localWeight
			correct += localCorrect
			mu.Unlock()
		}(models[i])
	}
	wg.Wait()
	var result evaluation
	if totalWeight > 0 {
		result.cost = totalCost / totalWeight
	}
	if len(samples) > 0 {
		result.accuracy = float64(correct) / float64(len(samples))
	}
	return result
}
