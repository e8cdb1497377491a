package pgn

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/notnil/chess"
	"go.uber.org/zap"
)

// Exporter writes one move folder (fen.txt, uci.txt) per mainline move.
type Exporter struct {
	OutputDir string
	// Split puts white moves under white/ and black moves under black/.
	Split  bool
	Logger *zap.SugaredLogger
}

type ExportStats struct {
	Games   int
	Skipped int
	Moves   int
}

// ExportFile exports every game of a PGN file. Games that fail to parse are
// logged and skipped.
func (e *Exporter) ExportFile(path string) (ExportStats, error) {
	var logger = e.logger()
	var stats ExportStats
	var err = WalkPgnFile(path, func(raw GameRaw) error {
		var n, err = e.ExportGame(raw)
		if err != nil {
			var ge *GameError
			if errors.As(err, &ge) {
				stats.Skipped++
				logger.Warnw("skip game", "file", path, "error", err)
				return nil
			}
			return err
		}
		stats.Games++
		stats.Moves += n
		return nil
	})
	if err != nil {
		return stats, err
	}
	logger.Infow("pgn exported", "file", path,
		"games", stats.Games, "skipped", stats.Skipped, "moves", stats.Moves)
	return stats, nil
}

type GameError struct {
	Name string
	Err  error
}

func (e *GameError) Error() string {
	return fmt.Sprintf("game %v: %v", e.Name, e.Err)
}

func (e *GameError) Unwrap() error { return e.Err }

// ExportGame returns the number of move folders written.
func (e *Exporter) ExportGame(raw GameRaw) (int, error) {
	var text = GameRaw{Tags: raw.Tags, BodyRaw: stripVariations(raw.BodyRaw)}.Text()
	var name = GameName(raw)
	gameOpt, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return 0, &GameError{Name: name, Err: err}
	}
	var game = chess.NewGame(gameOpt)
	var moves = game.Moves()
	var positions = game.Positions()

	for i, move := range moves {
		var pos = positions[i]
		var uci = move.String()
		var dir = e.OutputDir
		if e.Split {
			if pos.Turn() == chess.White {
				dir = filepath.Join(dir, "white")
			} else {
				dir = filepath.Join(dir, "black")
			}
		}
		dir = filepath.Join(dir, fmt.Sprintf("%v_%v_%v", name, i, uci))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return i, err
		}
		if err := os.WriteFile(filepath.Join(dir, "fen.txt"), []byte(pos.String()), 0644); err != nil {
			return i, err
		}
		if err := os.WriteFile(filepath.Join(dir, "uci.txt"), []byte(uci), 0644); err != nil {
			return i, err
		}
	}
	return len(moves), nil
}

// GameName is White_vs_Black_<hash>, with "Blank" for unknown players.
func GameName(raw GameRaw) string {
	var h = fnv.New32a()
	h.Write([]byte(raw.Text()))
	var hash = fmt.Sprintf("%x", h.Sum32()%0xffffff)

	white, whiteFound := tagValue(raw.Tags, "White")
	black, blackFound := tagValue(raw.Tags, "Black")
	if !whiteFound || !blackFound {
		return hash
	}
	return playerName(white) + "_vs_" + playerName(black) + "_" + hash
}

func playerName(s string) string {
	if s == "" || s == "?" {
		return "Blank"
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
}

func tagValue(tags []string, key string) (string, bool) {
	var prefix = "[" + key + " "
	for _, tag := range tags {
		if !strings.HasPrefix(tag, prefix) {
			continue
		}
		var value = strings.TrimSpace(strings.TrimPrefix(tag, prefix))
		value = strings.TrimSuffix(value, "]")
		value = strings.TrimSpace(value)
		value = strings.TrimPrefix(value, "\"")
		value = strings.TrimSuffix(value, "\"")
		return value, true
	}
	return "", false
}

// stripVariations removes parenthesized variations, keeping comments intact.
func stripVariations(body string) string {
	var sb = &strings.Builder{}
	var depth int
	var inComment bool
	for _, r := range body {
		switch {
		case inComment:
			if r == '}' {
				inComment = false
			}
			if depth == 0 {
				sb.WriteRune(r)
			}
			continue
		case r == '{':
			inComment = true
		case r == '(':
			depth++
			continue
		case r == ')':
			if depth > 0 {
				depth--
			}
			sb.WriteRune(' ')
			continue
		}
		if depth == 0 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (e *Exporter) logger() *zap.SugaredLogger {
	if e.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return e.Logger
}
