package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/amazons/automatic"
	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/config"
	"github.com/domino14/amazons/turnplayer"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -log /path/to/log.txt",
			&shellcmd{"autoplay", nil, CmdOptions{"log": {"/path/to/log.txt"}}},
			nil},
		{"autoplay stop",
			&shellcmd{"autoplay", []string{"stop"}, CmdOptions{}},
			nil},
		{"autoplay -p1 engine -p2 'exec:./bot --fast' -games 10 ",
			&shellcmd{"autoplay", nil,
				CmdOptions{"p1": {"engine"}, "p2": {"exec:./bot --fast"}, "games": {"10"}}},
			nil,
		},
		{"play d1-d7/g4",
			&shellcmd{"play", []string{"d1-d7/g4"}, CmdOptions{}},
			nil},
		{"autoplay -games",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func newTestController() *ShellController {
	return newShellController(config.DefaultConfig(), &bytes.Buffer{})
}

func run(t *testing.T, sc *ShellController, line string) (string, error) {
	t.Helper()
	cmd, err := extractFields(line)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := sc.standardModeSwitch(cmd)
	if resp == nil {
		return "", err
	}
	return resp.message, err
}

func TestPlayAndUndo(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	out, err := run(t, sc, "play d1-d7/g4")
	is.NoErr(err)
	is.True(strings.Contains(out, "1 moves played, black to move"))
	is.Equal(sc.side, board.SideBlack)
	is.Equal(sc.record.Moves, []string{"d1-d7/g4"})

	// d10 can't slide through the queen on d7.
	_, err = run(t, sc, "play d10-d5/d6")
	is.True(errors.Is(err, turnplayer.ErrIllegalMove))
	is.Equal(len(sc.record.Moves), 1)

	_, err = run(t, sc, "undo")
	is.NoErr(err)
	is.Equal(sc.side, board.SideWhite)
	is.Equal(sc.board.ToDisplayText(), board.NewBoard(sc.mt).ToDisplayText())

	_, err = run(t, sc, "undo")
	is.True(err != nil)
}

func TestGenAndPlayByIndex(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	out, err := run(t, sc, "gen 3")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "2176 moves for white\n"))
	is.True(strings.Contains(out, "  1: a4-a5/a6\n"))
	is.Equal(len(sc.curGenPlays), 3)

	_, err = run(t, sc, "play #4")
	is.True(err != nil)
	_, err = run(t, sc, "play #1")
	is.NoErr(err)
	is.Equal(sc.record.Moves, []string{"a4-a5/a6"})
	// Playing clears the listed moves.
	is.Equal(len(sc.curGenPlays), 0)
}

func TestPlayUntilOver(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	b, err := board.FromText(sc.mt, board.BlackNearlyTrapped)
	is.NoErr(err)
	sc.board, sc.side = b, board.SideBlack
	out, err := run(t, sc, "play a10-b10/a10")
	is.NoErr(err)
	is.Equal(sc.record.Winner, "")
	is.True(!strings.Contains(out, "no moves"))

	sc.side = board.SideBlack
	out, err = run(t, sc, "show")
	is.NoErr(err)
	is.True(strings.Contains(out, "black has no moves. white wins."))
}

func TestSearchAndAiplay(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	b, err := board.FromText(sc.mt, board.Corridor)
	is.NoErr(err)
	sc.board = b
	out, err := run(t, sc, "search -depth 1")
	is.NoErr(err)
	is.Equal(out, "best move b3-c3/b3, value -1.000, depth 1, 73 nodes")

	out, err = run(t, sc, "aiplay -depth 1 -threads 2")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "played b3-c3/b3\n"))
	is.Equal(sc.side, board.SideBlack)

	_, err = run(t, sc, "search -depth x")
	is.True(err != nil)
}

func TestEval(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	out, err := run(t, sc, "eval")
	is.NoErr(err)
	for _, name := range []string{"area", "floodfill", "mobility", "race", "reachability"} {
		is.True(strings.Contains(out, name))
	}
	out, err = run(t, sc, "eval squares")
	is.NoErr(err)
	is.Equal(strings.Count(out, "\n") >= 10, true)

	_, err = run(t, sc, "eval bogus")
	is.True(err != nil)
}

func TestSaveLoad(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	path := filepath.Join(t.TempDir(), "game.yaml.zst")
	_, err := run(t, sc, "play d1-d7/g4")
	is.NoErr(err)
	_, err = run(t, sc, "play j7-g7/g5")
	is.NoErr(err)
	_, err = run(t, sc, "save "+path)
	is.NoErr(err)
	want := sc.board.ToDisplayText()

	_, err = run(t, sc, "new")
	is.NoErr(err)
	is.Equal(len(sc.record.Moves), 0)

	_, err = run(t, sc, "load "+path)
	is.NoErr(err)
	is.Equal(sc.board.ToDisplayText(), want)
	is.Equal(sc.side, board.SideWhite)
	is.Equal(sc.record.Moves, []string{"d1-d7/g4", "j7-g7/g5"})

	_, err = run(t, sc, "load "+filepath.Join(t.TempDir(), "missing.yaml"))
	is.True(err != nil)
}

func TestSet(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	_, err := run(t, sc, "set threads 3")
	is.NoErr(err)
	is.Equal(sc.config.GetInt(config.ConfigThreads), 3)
	out, err := run(t, sc, "set threads")
	is.NoErr(err)
	is.Equal(out, "3")

	_, err = run(t, sc, "set threads 0")
	is.True(err != nil)
	_, err = run(t, sc, "set evaluator nonsense")
	is.True(err != nil)
	_, err = run(t, sc, "set lexicon NWL20")
	is.True(err != nil)

	out, err = run(t, sc, "set")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "autoplay-log"))
}

func TestAutoplay(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	path := filepath.Join(t.TempDir(), "autoplay.txt")
	_, err := run(t, sc, "autoplay -games 4 -threads 2 -p1 random -p2 random -log "+path)
	is.NoErr(err)
	<-sc.autoplayDone

	out, err := run(t, sc, "analyze "+path)
	is.NoErr(err)
	is.True(strings.Contains(out, "Games played: 4\n"))
	is.True(strings.Contains(out, "random-1 wins: "))

	_, err = run(t, sc, "autoplay -p1 nobody")
	is.True(err != nil)
}

func TestAutoplayToDB(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "games.db")
	_, err := run(t, sc, "autoplay -games 3 -p1 random -p2 random -log "+
		filepath.Join(dir, "autoplay.txt")+" -db "+dbPath)
	is.NoErr(err)
	<-sc.autoplayDone

	out, err := run(t, sc, "standings "+dbPath)
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Player "))
	is.True(strings.Contains(out, "random-1                 3"))
	is.True(strings.Contains(out, "random-2                 3"))

	_, err = run(t, sc, "load -db "+dbPath+" 2")
	is.NoErr(err)
	is.True(len(sc.record.Moves) > 0)
	is.True(sc.record.Winner != "")

	_, err = run(t, sc, "load -db "+dbPath+" 99")
	is.True(err != nil)
	_, err = run(t, sc, "standings")
	is.True(err != nil)
}

func TestPlayerFactory(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	f, err := sc.playerFactory("engine", 1, time.Second)
	is.NoErr(err)
	p, err := f()
	is.NoErr(err)
	is.Equal(p.Name(), "engine-1")
	_, err = sc.playerFactory("exec:", 1, time.Second)
	is.True(err != nil)
	_, err = sc.playerFactory("carrier-pigeon", 1, time.Second)
	is.True(err != nil)
}

func TestAutoplayExecRejectsOpening(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	_, err := run(t, sc, "autoplay -games 2 -opening 4 -p2 exec:cat")
	is.True(errors.Is(err, automatic.ErrOpeningWithSession))
	is.Equal(automatic.IsPlaying.Value(), int64(0))
}

const testScript = `
local json = require("json")
local http = require("http")
assert(http.get ~= nil)

local st = amazons_state()
assert(#st.moves == 0)
assert(st.to_move == "white")

assert(amazons_play("d1-d7/g4"))
local out, err = amazons_play("d10-d5/d6")
assert(out == nil and string.find(err, "illegal move"), err)

local gen = amazons_gen("2")
assert(string.find(gen, "moves for black"), gen)

st = amazons_state()
assert(st.to_move == "black")
assert(json.encode(st.moves) == '["d1-d7/g4"]')
amazons_play(arg[1])
`

func TestScript(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	path := filepath.Join(t.TempDir(), "test.lua")
	is.NoErr(os.WriteFile(path, []byte(testScript), 0o644))

	_, err := run(t, sc, "script "+path+" j7-g7/g5")
	is.NoErr(err)
	is.Equal(sc.record.Moves, []string{"d1-d7/g4", "j7-g7/g5"})

	_, err = run(t, sc, "script")
	is.True(err != nil)
	_, err = run(t, sc, "script "+filepath.Join(t.TempDir(), "missing.lua"))
	is.True(err != nil)
}

func TestHelpAndExit(t *testing.T) {
	is := is.New(t)
	sc := newTestController()
	out, err := run(t, sc, "help")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Usage:"))
	_, err = run(t, sc, "help search")
	is.NoErr(err)
	_, err = run(t, sc, "help nope")
	is.True(err != nil)

	_, err = run(t, sc, "frobnicate")
	is.True(err != nil)
	_, err = run(t, sc, "exit")
	is.Equal(err, errQuit)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	c := NewShellCompleter(newTestController())
	m, n := c.Do([]rune("sea"), 3)
	is.Equal(n, 3)
	is.Equal(m, [][]rune{[]rune("rch")})

	line := []rune("autoplay -p1 ra")
	m, n = c.Do(line, len(line))
	is.Equal(n, 2)
	is.Equal(m, [][]rune{[]rune("ndom")})

	line = []rune("search -d")
	m, _ = c.Do(line, len(line))
	is.Equal(m, [][]rune{[]rune("epth")})
}
