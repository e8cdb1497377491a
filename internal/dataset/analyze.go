package dataset

import (
	"github.com/ChizhovVadim/brilliant/internal/domain"
)

func (b *Builder) analyzeMove(move domain.MoveInfo, stats *buildStats) domain.MoveSample {
	var logger = b.logger()
	stats.moves++

	if move.Fen != "" {
		if err := CheckMove(move.Fen, move.Uci); err != nil {
			logger.Warnw("suspicious move", "move", move.Name, "error", err)
		}
	}

	var key string
	if b.Cache != nil {
		key = CacheKey(move.Name, move.Uci, b.Aggregator.TreePaths(move.Name))
		var features, found, err = b.Cache.Get(key)
		if err != nil {
			logger.Warnw("feature cache", "move", move.Name, "error", err)
		} else if found {
			stats.cached++
			return domain.MoveSample{MoveInfo: move, Features: features}
		}
	}

	var features, report = b.Aggregator.Compute(move.Name, move.Uci)
	stats.trees += report.Loaded + report.Degraded()
	stats.degraded += report.Degraded()
	logger.Debugw("move processed", "move", move.Name, "loaded", report.Loaded,
		"missing", report.Missing, "bad", report.Bad)

	if b.Cache != nil {
		if err := b.Cache.Put(key, features); err != nil {
			logger.Warnw("feature cache", "move", move.Name, "error", err)
		}
	}
	return domain.MoveSample{MoveInfo: move, Features: features}
}
