package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"github.com/ChizhovVadim/brilliant/internal/domain"
)

const (
	uciFileName   = "uci.txt"
	fenFileName   = "fen.txt"
	classFileName = "class.txt"
)

// LoadMoves walks movesDir in lexical order; every directory that holds a
// uci.txt is a candidate move. Labels are required when withLabels is set.
func LoadMoves(ctx context.Context, movesDir string, withLabels bool) ([]domain.MoveInfo, error) {
	var result []domain.MoveInfo
	var err = filepath.WalkDir(movesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() || path == movesDir {
			return nil
		}
		move, found, err := loadMove(path, withLabels)
		if err != nil {
			return err
		}
		if found {
			result = append(result, move)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no move folders found in %v", movesDir)
	}
	return result, nil
}

func loadMove(dir string, withLabels bool) (domain.MoveInfo, bool, error) {
	uci, err := readText(filepath.Join(dir, uciFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.MoveInfo{}, false, nil
		}
		return domain.MoveInfo{}, false, err
	}
	if uci == "" {
		return domain.MoveInfo{}, false, fmt.Errorf("empty move in %v", dir)
	}
	var move = domain.MoveInfo{
		Name: filepath.Base(dir),
		Dir:  dir,
		Uci:  uci,
	}

	fen, err := readText(filepath.Join(dir, fenFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.MoveInfo{}, false, err
	}
	move.Fen = fen

	if withLabels {
		sLabel, err := readText(filepath.Join(dir, classFileName))
		if err != nil {
			return domain.MoveInfo{}, false, fmt.Errorf("label of %v: %w", move.Name, err)
		}
		label, err := strconv.Atoi(sLabel)
		if err != nil || label < 0 || label > 2 {
			return domain.MoveInfo{}, false, fmt.Errorf("bad label %q in %v", sLabel, dir)
		}
		move.Label = label
		move.HasLabel = true
	}
	return move, true, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// CheckMove reports whether uci is a legal move in the FEN position.
func CheckMove(fen, uci string) error {
	fenOpt, err := chess.FEN(fen)
	if err != nil {
		return err
	}
	var game = chess.NewGame(fenOpt)
	for _, m := range game.ValidMoves() {
		if m.String() == uci {
			return nil
		}
	}
	return fmt.Errorf("move %v is illegal in %v", uci, fen)
}
