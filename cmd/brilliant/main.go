package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ChizhovVadim/brilliant/internal/config"
	"github.com/ChizhovVadim/brilliant/internal/dataset"
)

func main() {
	var err = run(os.Args)
	if err != nil {
		var ce *dataset.ConfigError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, "configuration error:", err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var cliArgs = NewCommandArgs(args)

	logger, err := NewLogger(cliArgs.GetBool("verbose", false))
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger = logger.With("run_id", uuid.NewString(), "command", cliArgs.CommandName())

	cfg, err := config.Setup(cliArgs.GetString("config", ""), configOverrides(cliArgs))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var app = &application{
		ctx:    ctx,
		cfg:    cfg,
		args:   cliArgs,
		logger: logger,
	}

	var ch = NewCommandHandler()
	ch.Add("pgn", app.exportPgn)
	ch.Add("features", app.buildFeatures)
	ch.Add("stats", app.computeStats)
	ch.Add("train", app.train)
	ch.Add("infer", app.infer)
	ch.Add("quality", app.measureQuality)
	return ch.Execute(cliArgs.CommandName())
}

// command-only params, not config keys
var commandParams = map[string]struct{}{
	"config":  {},
	"verbose": {},
	"pgn":     {},
	"split":   {},
	"labels":  {},
	"out":     {},
}

func configOverrides(args *CommandArgs) map[string]string {
	var result = make(map[string]string)
	for k, v := range args.Params() {
		if _, found := commandParams[k]; !found {
			result[k] = v
		}
	}
	return result
}

func NewLogger(verbose bool) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Sugar(), nil
}
