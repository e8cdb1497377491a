package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/ChizhovVadim/brilliant/internal/config"
	"github.com/ChizhovVadim/brilliant/internal/dataset"
	"github.com/ChizhovVadim/brilliant/internal/domain"
	"github.com/ChizhovVadim/brilliant/internal/features"
	"github.com/ChizhovVadim/brilliant/internal/movefeatures"
	"github.com/ChizhovVadim/brilliant/internal/pgn"
	"github.com/ChizhovVadim/brilliant/internal/quality"
	"github.com/ChizhovVadim/brilliant/internal/train"
)

type application struct {
	ctx    context.Context
	cfg    *config.Config
	args   *CommandArgs
	logger *zap.SugaredLogger
}

func (app *application) exportPgn() error {
	var path = app.args.GetString("pgn", "")
	if path == "" {
		return errors.New("-pgn file is required")
	}
	var exporter = &pgn.Exporter{
		OutputDir: app.cfg.MovesDir,
		Split:     app.args.GetBool("split", false),
		Logger:    app.logger,
	}
	var _, err = exporter.ExportFile(path)
	return err
}

func (app *application) newBuilder(withLabels bool) (*dataset.Builder, func(), error) {
	aggregator, err := movefeatures.NewAggregator(movefeatures.Context{
		TreesDir: app.cfg.TreesDir,
		Weights:  app.cfg.Weights,
		Logger:   app.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	var builder = &dataset.Builder{
		MovesDir:   app.cfg.MovesDir,
		WithLabels: withLabels,
		Threads:    app.cfg.Threads,
		Aggregator: aggregator,
		Logger:     app.logger,
	}
	var closeFn = func() {}
	if app.cfg.CacheDir != "" {
		cache, err := dataset.OpenFeatureCache(app.cfg.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		builder.Cache = cache
		closeFn = func() {
			if err := cache.Close(); err != nil {
				app.logger.Warnw("close feature cache", "error", err)
			}
		}
	}
	return builder, closeFn, nil
}

// buildFeatures writes the normalized dataset of the moves folder.
func (app *application) buildFeatures() error {
	stats, err := dataset.LoadStats(app.cfg.MeanPath, app.cfg.StdPath)
	if err != nil {
		return err
	}
	builder, closeFn, err := app.newBuilder(app.args.GetBool("labels", false))
	if err != nil {
		return err
	}
	defer closeFn()

	samples, err := builder.Build(app.ctx, stats)
	if err != nil {
		return err
	}
	if err := ensureDir(app.cfg.DatasetPath); err != nil {
		return err
	}
	if err := dataset.SaveCSV(app.cfg.DatasetPath, samples); err != nil {
		return err
	}
	app.logger.Infow("dataset saved", "path", app.cfg.DatasetPath, "rows", len(samples))
	return nil
}

// computeStats derives normalization statistics from the raw vectors.
func (app *application) computeStats() error {
	builder, closeFn, err := app.newBuilder(false)
	if err != nil {
		return err
	}
	defer closeFn()

	samples, err := builder.BuildRaw(app.ctx)
	if err != nil {
		return err
	}
	stats, err := dataset.ComputeStats(dataset.Matrix(samples))
	if err != nil {
		return err
	}
	for _, path := range []string{app.cfg.MeanPath, app.cfg.StdPath} {
		if err := ensureDir(path); err != nil {
			return err
		}
	}
	if err := dataset.SaveStats(stats, app.cfg.MeanPath, app.cfg.StdPath); err != nil {
		return err
	}
	app.logger.Infow("statistics saved", "mean", app.cfg.MeanPath, "std", app.cfg.StdPath, "rows", len(samples))
	return nil
}

func (app *application) train() error {
	rows, err := dataset.LoadCSV(app.cfg.DatasetPath)
	if err != nil {
		return err
	}
	samples, err := train.NewSamples(rows)
	if err != nil {
		return err
	}
	if err := ensureDir(app.cfg.ModelPath); err != nil {
		return err
	}
	var model = train.NewModel(rand.New(rand.NewSource(app.cfg.Seed)), features.VectorSize, app.cfg.Hidden)
	_, err = train.Train(app.ctx, samples, train.Config{
		Epochs:       app.cfg.Epochs,
		Threads:      app.cfg.Threads,
		BatchSize:    app.cfg.BatchSize,
		TrainSplit:   app.cfg.TrainSplit,
		Seed:         app.cfg.Seed,
		LearningRate: app.cfg.LearningRate,
		NetPath:      app.cfg.ModelPath,
	}, model, app.logger)
	return err
}

// infer prints name, score and decision per dataset row.
func (app *application) infer() error {
	rows, err := dataset.LoadCSV(app.cfg.DatasetPath)
	if err != nil {
		return err
	}
	model, err := train.LoadModel(app.cfg.ModelPath)
	if err != nil {
		return err
	}
	if model.InputSize() != features.VectorSize {
		return fmt.Errorf("model expects %v inputs, dataset rows have %v", model.InputSize(), features.VectorSize)
	}
	for i := range rows {
		if len(rows[i].Features) != features.VectorSize {
			return fmt.Errorf("row %v has %v features", rows[i].Name, len(rows[i].Features))
		}
	}

	var out io.Writer = os.Stdout
	if path := app.args.GetString("out", ""); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}
	var predictions = train.PredictAll(model, dataset.Matrix(rows), app.cfg.Threads)
	return writePredictions(out, rows, predictions)
}

// measureQuality compares the model decisions with the dataset labels.
func (app *application) measureQuality() error {
	rows, err := dataset.LoadCSV(app.cfg.DatasetPath)
	if err != nil {
		return err
	}
	model, err := train.LoadModel(app.cfg.ModelPath)
	if err != nil {
		return err
	}
	report, err := quality.RunQuality(model, rows)
	if err != nil {
		return err
	}
	app.logger.Infow("model quality",
		"rows", report.Count,
		"accuracy", report.Accuracy(),
		"precision", report.Precision(),
		"recall", report.Recall(),
		"mse", report.MSE)
	return nil
}

func writePredictions(w io.Writer, rows []domain.MoveSample, predictions []train.Prediction) error {
	for i, p := range predictions {
		var decision = "Not brilliant"
		if p.Brilliant {
			decision = "Brilliant"
		}
		if _, err := fmt.Fprintf(w, "%v,%v,%v\n", rows[i].Name, strconv.FormatFloat(p.Score, 'f', 6, 64), decision); err != nil {
			return err
		}
	}
	return nil
}

func ensureDir(path string) error {
	var dir = filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
