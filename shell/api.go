package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/amazons/alphabeta"
	"github.com/domino14/amazons/automatic"
	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/config"
	"github.com/domino14/amazons/equity"
	"github.com/domino14/amazons/gamedb"
	"github.com/domino14/amazons/gamerecord"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/movegen"
	"github.com/domino14/amazons/resultbus"
	"github.com/domino14/amazons/turnplayer"
)

const defaultGenPlays = 15

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) DurationDefault(key string, defaultD time.Duration) (time.Duration, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultD, nil
	}
	return time.ParseDuration(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

// settable maps the options `set` knows about to a validator.
var settable = map[string]func(string) error{
	config.ConfigTimePerTurn: func(v string) error {
		d, err := time.ParseDuration(v)
		if err == nil && d <= 0 {
			err = errors.New("time per turn must be positive")
		}
		return err
	},
	config.ConfigEvaluator: func(v string) error {
		_, err := equity.FromSpec(v)
		return err
	},
	config.ConfigThreads: func(v string) error {
		n, err := strconv.Atoi(v)
		if err == nil && n < 1 {
			err = errors.New("threads must be at least 1")
		}
		return err
	},
	config.ConfigEvalCache: func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil && (f < 0 || f > 0.5) {
			err = errors.New("eval cache fraction must be between 0 and 0.5")
		}
		return err
	},
	config.ConfigAutoplayLog: func(v string) error { return nil },
	config.ConfigGameDB:      func(v string) error { return nil },
}

func (sc *ShellController) newGame() {
	sc.board = board.NewBoard(sc.mt)
	sc.side = board.SideWhite
	sc.record = &gamerecord.GameRecord{White: "white", Black: "black"}
	sc.curGenPlays = nil
}

func (sc *ShellController) displayText() string {
	var sb strings.Builder
	sb.WriteString(sc.board.ToDisplayText())
	fmt.Fprintf(&sb, "\n%d moves played, %v to move\n", len(sc.record.Moves), sc.side)
	if !movegen.HasMoves(sc.board, sc.side) {
		fmt.Fprintf(&sb, "%v has no moves. %v wins.\n", sc.side, sc.side.Other())
	}
	return sb.String()
}

func (sc *ShellController) newCmd(cmd *shellcmd) (*Response, error) {
	sc.newGame()
	return msg(sc.displayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(sc.displayText()), nil
}

func (sc *ShellController) gen(cmd *shellcmd) (*Response, error) {
	n := defaultGenPlays
	if len(cmd.args) > 0 {
		var err error
		if cmd.args[0] == "all" {
			n = 0
		} else if n, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	sc.curGenPlays = movegen.FirstN(sc.board, sc.side, n)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d moves for %v\n", movegen.Count(sc.board, sc.side), sc.side)
	for i, m := range sc.curGenPlays {
		fmt.Fprintf(&sb, "%3d: %v\n", i+1, m)
	}
	return msg(sb.String()), nil
}

// parseMove accepts standard notation or #n for the nth move of the
// last `gen`.
func (sc *ShellController) parseMove(s string) (move.Move, error) {
	if strings.HasPrefix(s, "#") {
		idx, err := strconv.Atoi(s[1:])
		if err != nil {
			return move.Move{}, err
		}
		if idx < 1 || idx > len(sc.curGenPlays) {
			return move.Move{}, errors.New("play outside range")
		}
		return sc.curGenPlays[idx-1], nil
	}
	return move.Parse(s)
}

func (sc *ShellController) commit(m move.Move) error {
	if err := turnplayer.CheckLegal(sc.board, sc.side, m); err != nil {
		return err
	}
	if err := sc.board.Apply(m); err != nil {
		return err
	}
	sc.record.Append(m, sc.board)
	sc.side = sc.side.Other()
	sc.curGenPlays = nil
	if !movegen.HasMoves(sc.board, sc.side) {
		sc.record.Winner = sc.side.Other().String()
	}
	return nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <move> or play #<n>")
	}
	m, err := sc.parseMove(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.commit(m); err != nil {
		return nil, err
	}
	return msg(sc.displayText()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if len(sc.record.Moves) == 0 {
		return nil, errors.New("nothing to undo")
	}
	rec := *sc.record
	rec.Moves = rec.Moves[:len(rec.Moves)-1]
	if len(rec.Fingerprints) > len(rec.Moves) {
		rec.Fingerprints = rec.Fingerprints[:len(rec.Moves)]
	}
	rec.Winner = ""
	b, side, err := rec.Replay(sc.mt)
	if err != nil {
		return nil, err
	}
	sc.board, sc.side, sc.record = b, side, &rec
	sc.curGenPlays = nil
	return msg(sc.displayText()), nil
}

func (sc *ShellController) newSolver() (*alphabeta.Solver, error) {
	p, err := turnplayer.NewEngineFromConfig("engine", sc.config)
	if err != nil {
		return nil, err
	}
	return p.Solver(), nil
}

func (sc *ShellController) runSearch(cmd *shellcmd) (*alphabeta.Result, float64, *alphabeta.Solver, error) {
	solver, err := sc.newSolver()
	if err != nil {
		return nil, 0, nil, err
	}
	threads, err := cmd.options.IntDefault("threads", solver.Threads())
	if err != nil {
		return nil, 0, nil, err
	}
	solver.SetThreads(threads)
	if cmd.options.Bool("log") {
		solver.SetLogStream(sc.out)
	}
	depth, err := cmd.options.IntDefault("depth", -1)
	if err != nil {
		return nil, 0, nil, err
	}
	if depth >= 0 {
		r, v := solver.SearchDepth(context.Background(), sc.board, sc.side, depth)
		return r, v, solver, nil
	}
	budget, err := cmd.options.DurationDefault("time",
		sc.config.GetDuration(config.ConfigTimePerTurn))
	if err != nil {
		return nil, 0, nil, err
	}
	r, v := solver.Search(context.Background(), sc.board, sc.side, budget)
	return r, v, solver, nil
}

func (sc *ShellController) search(cmd *shellcmd) (*Response, error) {
	r, v, solver, err := sc.runSearch(cmd)
	if err != nil {
		return nil, err
	}
	// Node counts get big; group the digits.
	p := message.NewPrinter(language.English)
	if r == nil {
		return msg(p.Sprintf("no move found (value %.3f, %d nodes)", v, solver.Nodes())), nil
	}
	return msg(p.Sprintf("best move %v, value %.3f, depth %d, %d nodes",
		r.Move, v, r.Depth, solver.Nodes())), nil
}

func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	r, _, _, err := sc.runSearch(cmd)
	if err != nil {
		return nil, err
	}
	var m move.Move
	if r != nil {
		m = r.Move
	} else if first := movegen.FirstN(sc.board, sc.side, 1); len(first) > 0 {
		m = first[0]
	} else {
		return nil, fmt.Errorf("%v has no moves", sc.side)
	}
	if err := sc.commit(m); err != nil {
		return nil, err
	}
	return msg("played " + m.String() + "\n" + sc.displayText()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "squares" {
		return msg(equity.FormatSquareScores(sc.board)), nil
	}
	names := equity.Names()
	if len(cmd.args) > 0 {
		names = cmd.args
	}
	var sb strings.Builder
	for _, name := range names {
		e, err := equity.FromSpec(name)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&sb, "%-14s %8.3f\n", name, e(sc.board))
	}
	return msg(sb.String()), nil
}

// playerFactory builds a player from engine, random, or exec:<command>.
func (sc *ShellController) playerFactory(spec string, idx int,
	budget time.Duration) (automatic.PlayerFactory, error) {

	kind, command, _ := strings.Cut(spec, ":")
	name := fmt.Sprintf("%s-%d", kind, idx)
	switch kind {
	case "engine":
		return func() (turnplayer.Player, error) {
			p, err := turnplayer.NewEngineFromConfig(name, sc.config)
			if err != nil {
				return nil, err
			}
			p.SetBudget(budget)
			return p, nil
		}, nil
	case "random":
		return func() (turnplayer.Player, error) {
			return &namedPlayer{Player: &turnplayer.RandomPlayer{}, name: name}, nil
		}, nil
	case "exec":
		argv, err := shellquote.Split(command)
		if err != nil {
			return nil, err
		}
		if len(argv) == 0 {
			return nil, errors.New("exec needs a command")
		}
		return func() (turnplayer.Player, error) {
			return turnplayer.StartSubprocessPlayer(name, argv[0], argv[1:]...)
		}, nil
	}
	return nil, fmt.Errorf("unknown player %q; use engine, random or exec:<command>", spec)
}

type namedPlayer struct {
	turnplayer.Player
	name string
}

func (p *namedPlayer) Name() string { return p.name }

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 && cmd.args[0] == "stop" {
		if sc.autoplayCancel == nil {
			return nil, errors.New("no autoplay running")
		}
		sc.stopAutoplay()
		return msg("autoplay stopped"), nil
	}
	if automatic.IsPlaying.Value() > 0 {
		return nil, automatic.ErrAlreadyPlaying
	}
	games, err := cmd.options.IntDefault("games", 100)
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", 1)
	if err != nil {
		return nil, err
	}
	opening, err := cmd.options.IntDefault("opening", 0)
	if err != nil {
		return nil, err
	}
	budget, err := cmd.options.DurationDefault("time", time.Second)
	if err != nil {
		return nil, err
	}
	p1spec, p2spec := cmd.options.String("p1"), cmd.options.String("p2")
	if p1spec == "" {
		p1spec = "engine"
	}
	if p2spec == "" {
		p2spec = "random"
	}
	if opening > 0 && (strings.HasPrefix(p1spec, "exec:") || strings.HasPrefix(p2spec, "exec:")) {
		return nil, fmt.Errorf("%w: exec players need -opening 0", automatic.ErrOpeningWithSession)
	}
	p1, err := sc.playerFactory(p1spec, 1, budget)
	if err != nil {
		return nil, err
	}
	p2, err := sc.playerFactory(p2spec, 2, budget)
	if err != nil {
		return nil, err
	}
	logfile := cmd.options.String("log")
	if logfile == "" {
		logfile = sc.config.GetString(config.ConfigAutoplayLog)
	}
	opts := automatic.CompVsCompOptions{
		NumGames: games, Threads: threads, OutputFilename: logfile, OpeningPlies: opening,
	}
	stores, err := sc.resultStores(cmd)
	if err != nil {
		return nil, err
	}
	if len(stores) > 0 {
		opts.Store = automatic.MultiStore(stores)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sc.autoplayCancel, sc.autoplayDone = cancel, done
	go func() {
		defer close(done)
		defer closeStores(stores)
		err := automatic.CompVsComp(ctx, sc.mt, p1, p2, opts)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("autoplay-failed")
			return
		}
		log.Info().Str("log", logfile).Msg("autoplay-finished")
	}()
	return msg(fmt.Sprintf("autoplaying %d games of %v vs %v, logging to %v",
		games, p1spec, p2spec, logfile)), nil
}

// resultStores opens the stores autoplay results go to besides the log:
// a game database (-db, or the game-db option) and a NATS subject
// (-publish).
func (sc *ShellController) resultStores(cmd *shellcmd) ([]automatic.ResultStore, error) {
	var stores []automatic.ResultStore
	dbPath := cmd.options.String("db")
	if dbPath == "" {
		dbPath = sc.config.GetString(config.ConfigGameDB)
	}
	if dbPath != "" {
		db, err := gamedb.Open(context.Background(), dbPath)
		if err != nil {
			return nil, err
		}
		stores = append(stores, db)
	}
	if subject := cmd.options.String("publish"); subject != "" {
		pub, err := resultbus.Dial(context.Background(), sc.config.GetString(config.ConfigNatsURL),
			subject, fmt.Sprintf("shell-%d", time.Now().Unix()))
		if err != nil {
			closeStores(stores)
			return nil, err
		}
		stores = append(stores, pub)
	}
	return stores, nil
}

func closeStores(stores []automatic.ResultStore) {
	for _, s := range stores {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("close-store-failed")
			}
		}
	}
}

// stopAutoplay cancels a running autoplay and waits for it to wind down.
func (sc *ShellController) stopAutoplay() {
	if sc.autoplayCancel == nil {
		return
	}
	sc.autoplayCancel()
	<-sc.autoplayDone
	sc.autoplayCancel, sc.autoplayDone = nil, nil
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	path := sc.config.GetString(config.ConfigAutoplayLog)
	if len(cmd.args) > 0 {
		path = cmd.args[0]
	}
	out, err := automatic.AnalyzeLogFile(path)
	if err != nil {
		return nil, err
	}
	return msg(out), nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: save <file>")
	}
	if err := sc.record.SaveFile(cmd.args[0]); err != nil {
		return nil, err
	}
	return msg("saved " + cmd.args[0]), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <file> or load -db <file> <id>")
	}
	var rec *gamerecord.GameRecord
	var err error
	if dbPath := cmd.options.String("db"); dbPath != "" {
		rec, err = sc.loadFromDB(dbPath, cmd.args[0])
	} else {
		rec, err = gamerecord.LoadFile(cmd.args[0])
	}
	if err != nil {
		return nil, err
	}
	b, side, err := rec.Replay(sc.mt)
	if err != nil {
		return nil, err
	}
	sc.board, sc.side, sc.record = b, side, rec
	sc.curGenPlays = nil
	return msg(sc.displayText()), nil
}

func (sc *ShellController) loadFromDB(path, idstr string) (*gamerecord.GameRecord, error) {
	id, err := strconv.ParseInt(idstr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("badly formatted game id %q", idstr)
	}
	ctx := context.Background()
	db, err := gamedb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Record(ctx, id)
}

func (sc *ShellController) standings(cmd *shellcmd) (*Response, error) {
	path := sc.config.GetString(config.ConfigGameDB)
	if len(cmd.args) > 0 {
		path = cmd.args[0]
	}
	if path == "" {
		return nil, errors.New("usage: standings <db file>, or set game-db")
	}
	ctx := context.Background()
	db, err := gamedb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	st, err := db.Standings(ctx)
	if err != nil {
		return nil, err
	}
	return msg(gamedb.FormatStandings(st)), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	keys := lo.Keys(settable)
	sort.Strings(keys)
	if len(cmd.args) == 0 {
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%-14s %v\n", k, sc.config.Get(k))
		}
		return msg(sb.String()), nil
	}
	opt := cmd.args[0]
	validate, ok := settable[opt]
	if !ok {
		return nil, fmt.Errorf("cannot set %q; options are %v", opt, strings.Join(keys, ", "))
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%v", sc.config.Get(opt))), nil
	}
	val := cmd.args[1]
	if err := validate(val); err != nil {
		return nil, err
	}
	sc.config.Set(opt, val)
	return msg("set " + opt + " to " + val), nil
}
