package turnplayer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/movegen"
)

// DefaultExitGrace is how long Close waits for a child to exit on its own
// after its stdin is closed before killing it.
const DefaultExitGrace = 2 * time.Second

var errKilled = errors.New("killed after exit grace")

// SubprocessPlayer drives an external engine that speaks the line
// protocol: it is written the opponent's move as one line and answers
// with its own move as one line. An engine playing White is expected to
// move first without being written anything. The child plays a single
// game; StartGame replaces it with a new one, passing --black when it
// takes Black.
type SubprocessPlayer struct {
	name string
	path string
	args []string

	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan lineResult
	// closed to stop the reader once nobody will receive from lines
	done       chan struct{}
	readerDone chan struct{}
	side       board.Side
	// nothing has been written to or read from the child yet
	fresh bool

	exitGrace time.Duration
}

type lineResult struct {
	line string
	err  error
}

var _ SessionPlayer = (*SubprocessPlayer)(nil)

// StartSubprocessPlayer launches path with args, ready to play White.
// The child's stderr is passed through to ours.
func StartSubprocessPlayer(name, path string, args ...string) (*SubprocessPlayer, error) {
	p := &SubprocessPlayer{
		name:      name,
		path:      path,
		args:      args,
		exitGrace: DefaultExitGrace,
	}
	if err := p.start(board.SideWhite); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *SubprocessPlayer) start(side board.Side) error {
	args := p.args
	if side == board.SideBlack {
		args = append(slices.Clip(args), "--black")
	}
	cmd := exec.Command(p.path, args...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %v: %w", p.path, err)
	}
	log.Info().Str("player", p.name).Str("path", p.path).Strs("args", args).
		Int("pid", cmd.Process.Pid).Msg("started-subprocess-player")

	p.cmd = cmd
	p.stdin = stdin
	p.lines = make(chan lineResult)
	p.done = make(chan struct{})
	p.readerDone = make(chan struct{})
	p.side = side
	p.fresh = true
	go readLines(stdout, p.lines, p.done, p.readerDone)
	return nil
}

// readLines is the only reader of a child's stdout. It sends every
// non-blank line, then one error, then closes lines.
func readLines(r io.Reader, lines chan<- lineResult, done <-chan struct{}, finished chan<- struct{}) {
	defer close(finished)
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case lines <- lineResult{line: line}:
		case <-done:
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	select {
	case lines <- lineResult{err: err}:
	case <-done:
	}
}

func (p *SubprocessPlayer) Name() string {
	return p.name
}

// StartGame gets a child ready to play side from the starting position,
// reusing the current one only if it is untouched and on the same side.
func (p *SubprocessPlayer) StartGame(ctx context.Context, side board.Side) error {
	if p.cmd != nil && p.fresh && p.side == side {
		return nil
	}
	if err := p.stop(); err != nil {
		log.Warn().Err(err).Str("player", p.name).Msg("previous-subprocess-exit")
	}
	return p.start(side)
}

func (p *SubprocessPlayer) ChooseMove(ctx context.Context, b *board.Board, side board.Side) (*move.Move, error) {
	if !movegen.HasMoves(b, side) {
		return nil, nil
	}
	if p.cmd == nil {
		return nil, fmt.Errorf("%v is closed", p.name)
	}
	if side != p.side {
		return nil, fmt.Errorf("%v was started as %v, asked to move for %v", p.name, p.side, side)
	}
	p.fresh = false

	var res lineResult
	select {
	case <-ctx.Done():
		// A late answer stays queued for the next call.
		return nil, ctx.Err()
	case r, ok := <-p.lines:
		if !ok {
			r.err = io.ErrUnexpectedEOF
		}
		res = r
	}
	if res.err != nil {
		return nil, fmt.Errorf("reading from %v: %w", p.name, res.err)
	}
	m, err := move.Parse(res.line)
	if err != nil {
		return nil, err
	}
	if err := CheckLegal(b, side, m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *SubprocessPlayer) Observe(ctx context.Context, m move.Move) error {
	if p.cmd == nil {
		return fmt.Errorf("%v is closed", p.name)
	}
	p.fresh = false
	_, err := fmt.Fprintf(p.stdin, "%v\n", m)
	return err
}

// Close shuts the child's stdin and waits for it to exit, killing it if
// it outlives the exit grace. It returns the child's exit error, or
// errKilled if it had to be killed.
func (p *SubprocessPlayer) Close() error {
	return p.stop()
}

func (p *SubprocessPlayer) stop() error {
	if p.cmd == nil {
		return nil
	}
	cmd := p.cmd
	p.cmd = nil
	p.stdin.Close()
	close(p.done)

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	var err error
	select {
	case err = <-exited:
	case <-time.After(p.exitGrace):
		cmd.Process.Kill()
		<-exited
		err = errKilled
	}
	<-p.readerDone
	log.Debug().Str("player", p.name).AnErr("wait-err", err).Msg("subprocess-player-closed")
	if err != nil {
		return fmt.Errorf("%v: %w", p.name, err)
	}
	return nil
}
