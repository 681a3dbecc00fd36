package turnplayer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/amazons/alphabeta"
	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/config"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/equity"
	"github.com/domino14/amazons/move"
)

var mt = coord.NewMoveTable()

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func fromText(t *testing.T, text string) *board.Board {
	b, err := board.FromText(mt, text)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestCheckLegal(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard(mt)
	is.NoErr(CheckLegal(b, board.SideWhite, move.MustParse("a4-a5/a4")))
	is.True(errors.Is(CheckLegal(b, board.SideBlack, move.MustParse("a4-a5/a4")), ErrIllegalMove))
	// Can't jump over the queen on a7.
	is.True(errors.Is(CheckLegal(b, board.SideWhite, move.MustParse("a4-a8/a9")), ErrIllegalMove))
}

func TestRandomMove(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard(mt)
	p := &RandomPlayer{}
	for i := 0; i < 20; i++ {
		m, err := p.ChooseMove(context.Background(), b, board.SideBlack)
		is.NoErr(err)
		is.True(m != nil)
		is.NoErr(CheckLegal(b, board.SideBlack, *m))
	}
	is.True(RandomMove(fromText(t, board.WhiteWalledIn), board.SideWhite) == nil)

	// With one legal move there is nothing to choose.
	only := RandomMove(fromText(t, board.BlackNearlyTrapped), board.SideBlack)
	is.Equal(*only, move.MustParse("a10-b10/a10"))
}

func TestLinePlayer(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard(mt)
	in := strings.NewReader("\n  a4-a5/a6 \na4-a4/a5\nzz\n")
	var out bytes.Buffer
	p := NewLinePlayer("human", in, &out)
	is.Equal(p.Name(), "human")

	m, err := p.ChooseMove(context.Background(), b, board.SideWhite)
	is.NoErr(err)
	is.Equal(*m, move.MustParse("a4-a5/a6"))
	is.True(strings.Contains(out.String(), "white to move> "))

	_, err = p.ChooseMove(context.Background(), b, board.SideWhite)
	is.True(errors.Is(err, ErrIllegalMove))

	_, err = p.ChooseMove(context.Background(), b, board.SideWhite)
	is.True(errors.Is(err, move.ErrInvalidNotation))

	_, err = p.ChooseMove(context.Background(), b, board.SideWhite)
	is.True(errors.Is(err, io.ErrUnexpectedEOF))

	is.NoErr(p.Observe(context.Background(), move.MustParse("d10-d9/d8")))
	is.True(strings.Contains(out.String(), "opponent played d10-d9/d8"))
}

func TestLinePlayerNoMoves(t *testing.T) {
	is := is.New(t)
	p := NewLinePlayer("human", strings.NewReader(""), nil)
	m, err := p.ChooseMove(context.Background(), fromText(t, board.WhiteWalledIn), board.SideWhite)
	is.NoErr(err)
	is.True(m == nil)
}

func TestEnginePlayer(t *testing.T) {
	is := is.New(t)
	b := fromText(t, board.Corridor)
	p := NewEnginePlayer("engine", alphabeta.NewSolver(equity.WeightedReachability), 100*time.Millisecond)
	m, err := p.ChooseMove(context.Background(), b, board.SideWhite)
	is.NoErr(err)
	is.True(m != nil)
	is.NoErr(CheckLegal(b, board.SideWhite, *m))

	m, err = p.ChooseMove(context.Background(), fromText(t, board.WhiteWalledIn), board.SideWhite)
	is.NoErr(err)
	is.True(m == nil)
}

func TestEngineFromConfig(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigEvaluator, "mobility:1,area:0.5")
	cfg.Set(config.ConfigThreads, 2)
	cfg.Set(config.ConfigEvalCache, 0.00001)
	cfg.Set(config.ConfigTimePerTurn, "50ms")
	p, err := NewEngineFromConfig("cfg", cfg)
	is.NoErr(err)
	is.Equal(p.Solver().Threads(), 2)
	is.Equal(p.String(), "cfg (50ms per move, 2 threads)")

	cfg.Set(config.ConfigEvaluator, "nope")
	_, err = NewEngineFromConfig("cfg", cfg)
	is.True(errors.Is(err, equity.ErrUnknownEvaluator))
}

func TestEnginePlayerOutOfTime(t *testing.T) {
	is := is.New(t)
	b := fromText(t, board.Corridor)
	p := NewEnginePlayer("hasty", alphabeta.NewSolver(equity.Mobility), time.Nanosecond)
	m, err := p.ChooseMove(context.Background(), b, board.SideWhite)
	is.NoErr(err)
	is.Equal(m.String(), "b3-c3/b3")
}

func TestSubprocessPlayer(t *testing.T) {
	is := is.New(t)
	path, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("no cat binary")
	}
	// cat answers every move with the move it was told, which is legal
	// here for White.
	p, err := StartSubprocessPlayer("echo", path)
	is.NoErr(err)
	defer p.Close()

	b := fromText(t, board.Corridor)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	is.NoErr(p.Observe(ctx, move.MustParse("b7-d7/c7")))
	m, err := p.ChooseMove(ctx, b, board.SideWhite)
	is.NoErr(err)
	is.Equal(*m, move.MustParse("b7-d7/c7"))

	is.NoErr(p.Observe(ctx, move.MustParse("b5-c5/d5")))
	_, err = p.ChooseMove(ctx, b, board.SideWhite)
	is.True(errors.Is(err, ErrIllegalMove))
}

func TestSubprocessPlayerCancelKeepsLine(t *testing.T) {
	is := is.New(t)
	path, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("no cat binary")
	}
	p, err := StartSubprocessPlayer("echo", path)
	is.NoErr(err)
	b := fromText(t, board.Corridor)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ChooseMove(cancelled, b, board.SideWhite)
	is.True(errors.Is(err, context.Canceled))

	// The answer written after the cancel reaches the next call.
	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	is.NoErr(p.Observe(ctx, move.MustParse("b7-d7/c7")))
	m, err := p.ChooseMove(ctx, b, board.SideWhite)
	is.NoErr(err)
	is.Equal(*m, move.MustParse("b7-d7/c7"))

	_, err = p.ChooseMove(ctx, b, board.SideBlack)
	is.True(err != nil)
	is.NoErr(p.Close())
	is.True(p.Observe(ctx, move.MustParse("b7-d7/c7")) != nil)
}

func TestSubprocessPlayerStartGame(t *testing.T) {
	is := is.New(t)
	path, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("no cat binary")
	}
	p, err := StartSubprocessPlayer("echo", path)
	is.NoErr(err)
	defer p.Close()
	ctx := context.Background()

	pid := p.cmd.Process.Pid
	is.NoErr(p.StartGame(ctx, board.SideWhite))
	is.Equal(p.cmd.Process.Pid, pid)

	// Once it has seen a move it needs a new child.
	is.NoErr(p.Observe(ctx, move.MustParse("b7-d7/c7")))
	is.NoErr(p.StartGame(ctx, board.SideWhite))
	is.True(p.cmd.Process.Pid != pid)
	is.True(p.fresh)
}

func TestSubprocessPlayerCloseReportsExit(t *testing.T) {
	is := is.New(t)
	path, err := exec.LookPath("false")
	if err != nil {
		t.Skip("no false binary")
	}
	p, err := StartSubprocessPlayer("failing", path)
	is.NoErr(err)
	var exitErr *exec.ExitError
	is.True(errors.As(p.Close(), &exitErr))
	is.NoErr(p.Close())
}
