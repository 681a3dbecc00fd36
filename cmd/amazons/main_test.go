package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/config"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/turnplayer"
)

func testConfig(black bool) *config.Config {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigTimePerTurn, 50*time.Millisecond)
	cfg.Set(config.ConfigEvaluator, "mobility")
	cfg.Set(config.ConfigBlack, black)
	return cfg
}

func TestRunAsBlack(t *testing.T) {
	is := is.New(t)
	var out, errOut bytes.Buffer
	err := run(context.Background(), testConfig(true),
		strings.NewReader("d1-d7/g4\n"), &out, &errOut)
	// The opponent runs out of input after one move.
	is.True(errors.Is(err, io.ErrUnexpectedEOF))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	is.Equal(len(lines), 1)
	reply, err := move.Parse(lines[0])
	is.NoErr(err)

	b := board.NewBoard(coord.NewMoveTable())
	is.NoErr(b.Apply(move.MustParse("d1-d7/g4")))
	is.NoErr(turnplayer.CheckLegal(b, board.SideBlack, reply))
	is.True(strings.Contains(errOut.String(), "   a b c d e f g h i j\n"))
}

func TestRunRejectsIllegalInput(t *testing.T) {
	is := is.New(t)
	var out, errOut bytes.Buffer
	err := run(context.Background(), testConfig(true),
		strings.NewReader("a7-a8/a9\n"), &out, &errOut)
	// That's a Black piece and White is to move.
	is.True(errors.Is(err, turnplayer.ErrIllegalMove))
	is.Equal(out.Len(), 0)
}

func TestRunAsWhite(t *testing.T) {
	is := is.New(t)
	var out, errOut bytes.Buffer
	err := run(context.Background(), testConfig(false), strings.NewReader(""), &out, &errOut)
	is.True(errors.Is(err, io.ErrUnexpectedEOF))
	_, err = move.Parse(strings.TrimSpace(out.String()))
	is.NoErr(err)
}
