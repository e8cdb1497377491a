package pgn

import (
	"bufio"
	"os"
	"strings"
)

type GameRaw struct {
	Tags    []string
	BodyRaw string
}

// Text restores the game in PGN form.
func (g GameRaw) Text() string {
	var sb = &strings.Builder{}
	for _, tag := range g.Tags {
		sb.WriteString(tag)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(g.BodyRaw))
	sb.WriteString("\n")
	return sb.String()
}

func WalkPgnFile(
	filepath string,
	onGame func(GameRaw) error,
) error {
	file, err := os.Open(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	var tags []string
	var body = &strings.Builder{}
	var hasBody bool

	var flush = func() error {
		var err error
		if len(tags) != 0 && strings.TrimSpace(body.String()) != "" {
			err = onGame(GameRaw{
				Tags:    tags,
				BodyRaw: body.String(),
			})
		}
		hasBody = false
		tags = nil
		body.Reset()
		return err
	}

	var scanner = bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line = strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "[") {
			if hasBody {
				if err := flush(); err != nil {
					return err
				}
			}
			tags = append(tags, line)
		} else {
			if strings.TrimSpace(line) != "" {
				hasBody = true
			}
			body.WriteString(line)
			body.WriteString(" ")
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if hasBody {
		return flush()
	}
	return nil
}
