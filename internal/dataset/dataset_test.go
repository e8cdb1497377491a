package dataset

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChizhovVadim/brilliant/internal/domain"
	"github.com/ChizhovVadim/brilliant/internal/features"
	"github.com/ChizhovVadim/brilliant/internal/movefeatures"
)

const startFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

const treeGml = `graph [
  directed 1
  node [ id 0 N "80" Q "-0.2" ]
  node [ id 1 N "50" Q "0.3" P "0.6" move "e2e4" ]
  node [ id 2 N "30" Q "-0.1" P "0.3" move "d2d4" ]
  edge [ source 0 target 1 ]
  edge [ source 0 target 2 ]
]`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeMove(t *testing.T, dir, uci, fen, label string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "uci.txt"), uci)
	if fen != "" {
		writeFile(t, filepath.Join(dir, "fen.txt"), fen)
	}
	if label != "" {
		writeFile(t, filepath.Join(dir, "class.txt"), label+"\n")
	}
}

func TestApplyStats(t *testing.T) {
	var stats = &Stats{Mean: []float64{1, 1}, Std: []float64{0, 2}}
	var x = []float64{5, 5}
	stats.Apply(x)
	if x[0] != 5 || x[1] != 2 {
		t.Errorf("Apply = %v, want [5 2]", x)
	}
}

func TestLoadStats(t *testing.T) {
	var dir = t.TempDir()
	var mean = make([]float64, features.VectorSize)
	var std = make([]float64, features.VectorSize)
	for i := range mean {
		mean[i] = float64(i) / 7
		std[i] = math.Sqrt(float64(i))
	}
	var meanPath = filepath.Join(dir, "mean.csv")
	var stdPath = filepath.Join(dir, "std.csv")
	if err := SaveStats(&Stats{Mean: mean, Std: std}, meanPath, stdPath); err != nil {
		t.Fatal(err)
	}
	stats, err := LoadStats(meanPath, stdPath)
	if err != nil {
		t.Fatal(err)
	}
	for i := range mean {
		if stats.Mean[i] != mean[i] || stats.Std[i] != std[i] {
			t.Fatalf("column %v differs", i)
		}
	}

	var short = filepath.Join(dir, "short.csv")
	writeFile(t, short, "1,2,3")
	var bad = filepath.Join(dir, "bad.csv")
	writeFile(t, bad, strings.Repeat("0,", features.VectorSize-1)+"x")

	var tests = []struct {
		name      string
		mean, std string
	}{
		{"missing mean", filepath.Join(dir, "none.csv"), stdPath},
		{"missing std", meanPath, filepath.Join(dir, "none.csv")},
		{"short", short, stdPath},
		{"bad number", meanPath, bad},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var _, err = LoadStats(test.mean, test.std)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	var stats, err = ComputeStats([][]float64{{1, 2, 5}, {3, 2, 5}})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Mean[0] != 2 || stats.Mean[1] != 2 || stats.Std[0] != 1 || stats.Std[1] != 0 || stats.Std[2] != 0 {
		t.Errorf("bad stats %+v", stats)
	}
	if _, err := ComputeStats(nil); err == nil {
		t.Error("expected error for no rows")
	}
	if _, err := ComputeStats([][]float64{{1}, {1, 2}}); err == nil {
		t.Error("expected error for ragged rows")
	}
}

func TestLoadMoves(t *testing.T) {
	var dir = t.TempDir()
	writeMove(t, filepath.Join(dir, "white", "g_2_d2d4"), "d2d4", startFen, "1")
	writeMove(t, filepath.Join(dir, "black", "g_1_e7e5"), "e7e5\n", "", "2")
	writeMove(t, filepath.Join(dir, "g_0_e2e4"), "e2e4", startFen, "0")

	var moves, err = LoadMoves(context.Background(), dir, true)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, m := range moves {
		names = append(names, m.Name)
	}
	if strings.Join(names, " ") != "g_1_e7e5 g_0_e2e4 g_2_d2d4" {
		t.Fatalf("moves %v", names)
	}
	if moves[0].Uci != "e7e5" || moves[0].Label != 2 || !moves[0].HasLabel || moves[0].Fen != "" {
		t.Errorf("bad move %+v", moves[0])
	}
	if moves[1].Fen != startFen {
		t.Errorf("fen %q", moves[1].Fen)
	}

	os.Remove(filepath.Join(dir, "g_0_e2e4", "class.txt"))
	if _, err := LoadMoves(context.Background(), dir, true); err == nil {
		t.Error("expected error for missing label")
	}
	if _, err := LoadMoves(context.Background(), dir, false); err != nil {
		t.Errorf("unlabelled load failed: %v", err)
	}
	if _, err := LoadMoves(context.Background(), t.TempDir(), false); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestCheckMove(t *testing.T) {
	if err := CheckMove(startFen, "e2e4"); err != nil {
		t.Error(err)
	}
	if err := CheckMove(startFen, "e2e5"); err == nil {
		t.Error("e2e5 accepted")
	}
	if err := CheckMove("not a fen", "e2e4"); err == nil {
		t.Error("bad fen accepted")
	}
}

func newTestBuilder(t *testing.T, cache *FeatureCache) (*Builder, string, string) {
	t.Helper()
	var root = t.TempDir()
	var movesDir = filepath.Join(root, "moves")
	var treesDir = filepath.Join(root, "trees")
	writeMove(t, filepath.Join(movesDir, "a_e2e4"), "e2e4", startFen, "0")
	writeMove(t, filepath.Join(movesDir, "b_d2d4"), "d2d4", startFen, "1")
	writeMove(t, filepath.Join(movesDir, "c_g1f3"), "g1f3", "", "2")

	aggregator, err := movefeatures.NewAggregator(movefeatures.Context{
		TreesDir: treesDir,
		Weights:  []string{"lc0", "maia"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a_e2e4", "b_d2d4"} {
		writeFile(t, aggregator.TreePath(name, 0, 0), treeGml)
		writeFile(t, aggregator.TreePath(name, 1, 4), treeGml)
	}
	writeFile(t, aggregator.TreePath("c_g1f3", 0, 0), "garbage")
	return &Builder{
		MovesDir:   movesDir,
		WithLabels: true,
		Threads:    2,
		Aggregator: aggregator,
		Cache:      cache,
	}, movesDir, treesDir
}

func TestBuildRaw(t *testing.T) {
	var b, _, _ = newTestBuilder(t, nil)
	var samples, err = b.BuildRaw(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 {
		t.Fatalf("got %v samples", len(samples))
	}
	for i, name := range []string{"a_e2e4", "b_d2d4", "c_g1f3"} {
		if samples[i].Name != name || len(samples[i].Features) != features.VectorSize {
			t.Errorf("sample %v: %v, %v features", i, samples[i].Name, len(samples[i].Features))
		}
	}
	var moveInTree = features.OffsetFlag(0, 0, features.FlagMoveInTree)
	if samples[0].Features[moveInTree] != 1 || samples[1].Features[moveInTree] != 1 {
		t.Error("move should be in tree")
	}
	var moveIsBest = features.OffsetFlag(1, 4, features.FlagMoveIsBest)
	if samples[0].Features[moveIsBest] != 1 || samples[1].Features[moveIsBest] != 0 {
		t.Error("only e2e4 is best")
	}
	for _, v := range samples[2].Features {
		if v != 0 {
			t.Fatal("move without trees must stay zero")
		}
	}
}

func TestBuildNormalizes(t *testing.T) {
	var b, _, _ = newTestBuilder(t, nil)
	var mean = make([]float64, features.VectorSize)
	var std = make([]float64, features.VectorSize)
	var rootN = features.OffsetSubtree(0, 0, features.RoleParent, features.FeatureRootN)
	mean[rootN] = 40
	std[rootN] = 20
	var samples, err = b.Build(context.Background(), &Stats{Mean: mean, Std: std})
	if err != nil {
		t.Fatal(err)
	}
	if samples[0].Features[rootN] != 2 {
		t.Errorf("normalized root N = %v, want 2", samples[0].Features[rootN])
	}
	if samples[2].Features[rootN] != -2 {
		t.Errorf("normalized zero root N = %v, want -2", samples[2].Features[rootN])
	}

	var ce *ConfigError
	if _, err := b.Build(context.Background(), nil); !errors.As(err, &ce) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}

func TestBuildUsesCache(t *testing.T) {
	var cache, err = OpenFeatureCache("")
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	var b, _, _ = newTestBuilder(t, cache)
	first, err := b.BuildRaw(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var key = CacheKey("a_e2e4", "e2e4", b.Aggregator.TreePaths("a_e2e4"))
	cached, found, err := cache.Get(key)
	if err != nil || !found {
		t.Fatalf("entry not cached: %v %v", found, err)
	}
	for i := range cached {
		if cached[i] != first[0].Features[i] {
			t.Fatalf("cached value %v differs", i)
		}
	}

	second, err := b.BuildRaw(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i := range second {
		for j := range second[i].Features {
			if second[i].Features[j] != first[i].Features[j] {
				t.Fatalf("row %v differs at %v", i, j)
			}
		}
	}

	// regenerating a tree changes the key
	writeFile(t, b.Aggregator.TreePath("a_e2e4", 0, 1), treeGml)
	if CacheKey("a_e2e4", "e2e4", b.Aggregator.TreePaths("a_e2e4")) == key {
		t.Error("key ignores new tree")
	}
}

func TestFeatureCache(t *testing.T) {
	var cache, err = OpenFeatureCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if _, found, err := cache.Get("nothing"); found || err != nil {
		t.Errorf("unexpected entry %v %v", found, err)
	}
	var values = []float64{0, -1, 0.25, math.MaxFloat64, 3}
	if err := cache.Put("k", values); err != nil {
		t.Fatal(err)
	}
	got, found, err := cache.Get("k")
	if err != nil || !found || len(got) != len(values) {
		t.Fatalf("Get = %v %v %v", got, found, err)
	}
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("value %v = %v", i, got[i])
		}
	}
}

func TestCSV(t *testing.T) {
	var samples = []domain.MoveSample{
		{MoveInfo: domain.MoveInfo{Name: "Carlsen, Magnus_vs_Blank_1f_0_e2e4", Label: 2, HasLabel: true}, Features: []float64{1, -0.5, 1e-9}},
		{MoveInfo: domain.MoveInfo{Name: "x"}, Features: []float64{0, 0, 3}},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samples); err != nil {
		t.Fatal(err)
	}
	var got, err = ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != samples[0].Name || got[0].Label != 2 || !got[0].HasLabel || got[1].HasLabel {
		t.Fatalf("bad rows %+v", got)
	}
	for i := range samples {
		for j := range samples[i].Features {
			if got[i].Features[j] != samples[i].Features[j] {
				t.Errorf("row %v feature %v = %v", i, j, got[i].Features[j])
			}
		}
	}

	if _, err := ReadCSV(strings.NewReader("m,1,abc\n")); err == nil {
		t.Error("bad feature accepted")
	}
	if matrix := Matrix(got); len(matrix) != 2 || matrix[1][2] != 3 {
		t.Error("bad matrix")
	}
}
