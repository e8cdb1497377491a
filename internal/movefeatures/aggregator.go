// Package movefeatures assembles the full feature vector of one candidate
// move from its search trees.
package movefeatures

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ChizhovVadim/brilliant/internal/features"
	"github.com/ChizhovVadim/brilliant/internal/searchtree"
)

// Context is everything an Aggregator needs; it carries no mutable state and
// may be shared by workers.
type Context struct {
	TreesDir string
	// Weights are the tree directory names, indexed by weight set.
	Weights []string
	Logger  *zap.SugaredLogger
}

type Report struct {
	Loaded  int
	Missing int
	Bad     int
}

func (r Report) Degraded() int { return r.Missing + r.Bad }

type Aggregator struct {
	ctx Context
}

func NewAggregator(ctx Context) (*Aggregator, error) {
	if len(ctx.Weights) != features.WeightSets {
		return nil, fmt.Errorf("%v weight sets expected, got %v", features.WeightSets, len(ctx.Weights))
	}
	if ctx.Logger == nil {
		ctx.Logger = zap.NewNop().Sugar()
	}
	return &Aggregator{ctx: ctx}, nil
}

// TreePath is the file of weight set w (0-based) and tree size index k
// (0-based, the file numbers sizes from 1).
func (a *Aggregator) TreePath(moveName string, weight, tree int) string {
	return filepath.Join(a.ctx.TreesDir, a.ctx.Weights[weight], moveName,
		fmt.Sprintf("tree_%d_%d.gml", weight, tree+1))
}

// TreePaths lists every tree file of a move in vector order.
func (a *Aggregator) TreePaths(moveName string) []string {
	var result []string
	for w := 0; w < features.WeightSets; w++ {
		for k := 0; k < features.TreeSizes; k++ {
			result = append(result, a.TreePath(moveName, w, k))
		}
	}
	return result
}

// Compute returns the raw feature vector of length features.VectorSize.
// Blocks of unavailable or malformed trees stay zero.
func (a *Aggregator) Compute(moveName, uci string) ([]float64, Report) {
	var result = make([]float64, features.VectorSize)
	var report Report
	for w := 0; w < features.WeightSets; w++ {
		for k := 0; k < features.TreeSizes; k++ {
			var path = a.TreePath(moveName, w, k)
			var tree, err = searchtree.Load(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					report.Missing++
					a.ctx.Logger.Warnw("tree unavailable",
						"move", moveName, "weight", a.ctx.Weights[w], "tree", k+1)
				} else {
					report.Bad++
					a.ctx.Logger.Warnw("bad tree",
						"move", moveName, "weight", a.ctx.Weights[w], "tree", k+1, "error", err)
				}
				continue
			}
			report.Loaded++
			FillTree(result, w, k, tree, uci)
		}
	}
	return result, report
}

// FillTree writes the block of one (weight, tree) pair into dst.
func FillTree(dst []float64, weight, tree int, t *searchtree.Tree, uci string) {
	var parent = features.Extract(t, t.Root(), uci)

	dst[features.OffsetFlag(weight, tree, features.FlagMoveInTree)] = boolValue(parent.MoveFound)
	dst[features.OffsetFlag(weight, tree, features.FlagMoveIsBest)] = boolValue(parent.MoveIsBest)

	putSubtree(dst, features.OffsetSubtree(weight, tree, features.RoleParent, 0), features.Transform(&parent))

	var move = features.Defaults()
	if parent.MoveFound {
		var e = features.Extract(t, parent.MoveNode, uci)
		move = features.Transform(&e)
	}
	putSubtree(dst, features.OffsetSubtree(weight, tree, features.RoleMove, 0), move)

	for subset := 0; subset < features.SubsetCount; subset++ {
		var members = parent.Subset(subset)
		var subtrees = make([]features.Subtree, 0, len(members))
		for _, id := range members {
			var e = features.Extract(t, id, uci)
			subtrees = append(subtrees, features.Transform(&e))
		}
		var aggs = features.Aggregate(subtrees)
		for agg := range aggs {
			putSubtree(dst, features.OffsetSubset(weight, tree, subset, agg, 0), aggs[agg])
		}
	}
}

// TreeBlock is the block of a single tree, as placed at weight 0, tree 0.
func TreeBlock(t *searchtree.Tree, uci string) []float64 {
	var block = make([]float64, features.BlockSize)
	FillTree(block, 0, 0, t, uci)
	return block
}

func putSubtree(dst []float64, offset int, s features.Subtree) {
	copy(dst[offset:offset+features.SubtreeSize], s[:])
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
