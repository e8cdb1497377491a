package movefeatures

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChizhovVadim/brilliant/internal/features"
	"github.com/ChizhovVadim/brilliant/internal/searchtree"
)

const deepGml = `graph [
  directed 1
  node [ id 0 N "100" Q "-0.2" ]
  node [ id 1 N "60" Q "0.3" P "0.6" move "e2e4" ]
  node [ id 2 N "30" Q "-0.1" P "0.3" move "d2d4" ]
  node [ id 3 N "20" Q "0.1" P "0.5" move "e7e5" ]
  node [ id 4 N "10" Q "-0.05" P "0.2" move "c7c5" ]
  node [ id 5 N "5" Q "0.2" P "0.9" move "g1f3" ]
  edge [ source 0 target 1 ]
  edge [ source 0 target 2 ]
  edge [ source 1 target 3 ]
  edge [ source 1 target 4 ]
  edge [ source 3 target 5 ]
]`

func writeTree(t *testing.T, path, src string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestAggregator(t *testing.T) (*Aggregator, string) {
	t.Helper()
	var dir = t.TempDir()
	var a, err = NewAggregator(Context{
		TreesDir: dir,
		Weights:  []string{"lc0", "maia"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return a, dir
}

func subtreeAt(v []float64, offset int) features.Subtree {
	var s features.Subtree
	copy(s[:], v[offset:offset+features.SubtreeSize])
	return s
}

func TestTreePath(t *testing.T) {
	var a, dir = newTestAggregator(t)
	var want = filepath.Join(dir, "maia", "game_3_e2e4", "tree_1_5.gml")
	if got := a.TreePath("game_3_e2e4", 1, 4); got != want {
		t.Errorf("TreePath = %v, want %v", got, want)
	}
	var paths = a.TreePaths("m")
	if len(paths) != features.WeightSets*features.TreeSizes {
		t.Errorf("got %v paths", len(paths))
	}
	if !strings.HasSuffix(paths[0], "tree_0_1.gml") || !strings.HasSuffix(paths[9], "tree_1_5.gml") {
		t.Errorf("bad path order %v", paths)
	}
}

func TestNewAggregatorChecksWeights(t *testing.T) {
	if _, err := NewAggregator(Context{Weights: []string{"lc0"}}); err == nil {
		t.Error("expected error for one weight set")
	}
}

func TestCompute(t *testing.T) {
	var a, _ = newTestAggregator(t)
	writeTree(t, a.TreePath("m1", 0, 0), deepGml)
	writeTree(t, a.TreePath("m1", 1, 2), deepGml)
	writeTree(t, a.TreePath("m1", 1, 3), "graph [ node [ id 0 N 1 ]")

	var v, report = a.Compute("m1", "e2e4")
	if len(v) != features.VectorSize {
		t.Fatalf("len = %v", len(v))
	}
	if report.Loaded != 2 || report.Bad != 1 || report.Missing != 7 || report.Degraded() != 8 {
		t.Errorf("report %+v", report)
	}

	var tree, err = searchtree.Parse(strings.NewReader(deepGml))
	if err != nil {
		t.Fatal(err)
	}
	var block = TreeBlock(tree, "e2e4")
	for i := 0; i < features.BlockSize; i++ {
		if v[features.BlockOffset(0, 0)+i] != block[i] {
			t.Fatalf("block (0,0) differs at %v", i)
		}
		if v[features.BlockOffset(1, 2)+i] != block[i] {
			t.Fatalf("block (1,2) differs at %v", i)
		}
	}
	for _, wk := range [][2]int{{0, 1}, {1, 3}, {1, 4}} {
		for i := 0; i < features.BlockSize; i++ {
			if v[features.BlockOffset(wk[0], wk[1])+i] != 0 {
				t.Fatalf("degraded block %v not zero at %v", wk, i)
			}
		}
	}
}

func TestTreeBlockLayout(t *testing.T) {
	var tree, err = searchtree.Parse(strings.NewReader(deepGml))
	if err != nil {
		t.Fatal(err)
	}
	var block = TreeBlock(tree, "e2e4")

	if block[features.FlagMoveInTree] != 1 || block[features.FlagMoveIsBest] != 1 {
		t.Errorf("flags %v %v", block[0], block[1])
	}

	var parent = features.Extract(tree, 0, "e2e4")
	if subtreeAt(block, features.OffsetSubtree(0, 0, features.RoleParent, 0)) != features.Transform(&parent) {
		t.Error("parent subtree misplaced")
	}
	var move = features.Extract(tree, 1, "e2e4")
	if subtreeAt(block, features.OffsetSubtree(0, 0, features.RoleMove, 0)) != features.Transform(&move) {
		t.Error("move subtree misplaced")
	}

	// improving and advantageous are empty: four defaults each
	for _, subset := range []int{features.SubsetImproving, features.SubsetAdvantageous} {
		for agg := 0; agg < features.AggCount; agg++ {
			if subtreeAt(block, features.OffsetSubset(0, 0, subset, agg, 0)) != features.Defaults() {
				t.Errorf("subset %v agg %v is not default", subset, agg)
			}
		}
	}

	// losing and disadvantageous hold the single d2d4 subtree
	var other = features.Extract(tree, 2, "e2e4")
	var otherSubtree = features.Transform(&other)
	for _, subset := range []int{features.SubsetLosing, features.SubsetDisadvantageous} {
		for _, agg := range []int{features.AggMean, features.AggMax, features.AggMin} {
			if subtreeAt(block, features.OffsetSubset(0, 0, subset, agg, 0)) != otherSubtree {
				t.Errorf("subset %v agg %v differs", subset, agg)
			}
		}
		if subtreeAt(block, features.OffsetSubset(0, 0, subset, features.AggStd, 0)) != (features.Subtree{}) {
			t.Errorf("subset %v std of one subtree is not zero", subset)
		}
	}
}

func TestTreeBlockMoveAbsent(t *testing.T) {
	var tree, err = searchtree.Parse(strings.NewReader(deepGml))
	if err != nil {
		t.Fatal(err)
	}
	var block = TreeBlock(tree, "a2a3")
	if block[features.FlagMoveInTree] != 0 || block[features.FlagMoveIsBest] != 0 {
		t.Error("flags set for absent move")
	}
	if subtreeAt(block, features.OffsetSubtree(0, 0, features.RoleMove, 0)) != features.Defaults() {
		t.Error("absent move subtree is not default")
	}
}
