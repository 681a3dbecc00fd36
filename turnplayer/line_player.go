package turnplayer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/movegen"
)

// LinePlayer reads one move in notation per line, from a person at a
// terminal or from a script. Blank lines are skipped.
type LinePlayer struct {
	name    string
	scanner *bufio.Scanner
	// for prompts and echoing the opponent's moves; may be nil
	out io.Writer
}

func NewLinePlayer(name string, in io.Reader, out io.Writer) *LinePlayer {
	return &LinePlayer{name: name, scanner: bufio.NewScanner(in), out: out}
}

func (p *LinePlayer) Name() string {
	return p.name
}

func (p *LinePlayer) ChooseMove(ctx context.Context, b *board.Board, side board.Side) (*move.Move, error) {
	if !movegen.HasMoves(b, side) {
		return nil, nil
	}
	if p.out != nil {
		fmt.Fprintf(p.out, "%v to move> ", side)
	}
	line, err := p.readLine()
	if err != nil {
		return nil, err
	}
	m, err := move.Parse(line)
	if err != nil {
		return nil, err
	}
	if err := CheckLegal(b, side, m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *LinePlayer) readLine() (string, error) {
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line != "" {
			log.Debug().Str("player", p.name).Str("line", line).Msg("read-line")
			return line, nil
		}
	}
	if err := p.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}

func (p *LinePlayer) Observe(ctx context.Context, m move.Move) error {
	if p.out != nil {
		fmt.Fprintf(p.out, "opponent played %v\n", m)
	}
	return nil
}
