package dataset

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ChizhovVadim/brilliant/internal/domain"
	"github.com/ChizhovVadim/brilliant/internal/movefeatures"
)

type Builder struct {
	MovesDir   string
	WithLabels bool
	Threads    int
	Aggregator *movefeatures.Aggregator
	// Cache is optional.
	Cache  *FeatureCache
	Logger *zap.SugaredLogger
}

type buildStats struct {
	moves    int
	cached   int
	degraded int
	trees    int
}

func (s *buildStats) add(other buildStats) {
	s.moves += other.moves
	s.cached += other.cached
	s.degraded += other.degraded
	s.trees += other.trees
}

// BuildRaw computes the un-normalized rows of every move in MovesDir, in
// move order.
func (b *Builder) BuildRaw(ctx context.Context) ([]domain.MoveSample, error) {
	var logger = b.logger()
	logger.Infow("build dataset started", "moves_dir", b.MovesDir)
	defer logger.Infow("build dataset finished")

	moves, err := LoadMoves(ctx, b.MovesDir, b.WithLabels)
	if err != nil {
		return nil, err
	}
	logger.Infow("moves loaded", "count", len(moves))

	var result = make([]domain.MoveSample, len(moves))
	var total buildStats
	var mu = &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	var jobs = make(chan int, 128)
	g.Go(func() error {
		defer close(jobs)
		for i := range moves {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- i:
			}
		}
		return nil
	})

	var threads = b.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			var local buildStats
			for index := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				result[index] = b.analyzeMove(moves[index], &local)
			}
			mu.Lock()
			total.add(local)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Infow("features computed",
		"moves", total.moves,
		"cached", total.cached,
		"trees", total.trees,
		"degraded_trees", total.degraded)
	return result, nil
}

// Build is BuildRaw followed by normalization with stats.
func (b *Builder) Build(ctx context.Context, stats *Stats) ([]domain.MoveSample, error) {
	if stats == nil {
		return nil, &ConfigError{Err: errors.New("statistics are required")}
	}
	samples, err := b.BuildRaw(ctx)
	if err != nil {
		return nil, err
	}
	for i := range samples {
		stats.Apply(samples[i].Features)
	}
	return samples, nil
}

func (b *Builder) logger() *zap.SugaredLogger {
	if b.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return b.Logger
}
