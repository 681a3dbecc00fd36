package shell

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cjoudrey/gluahttp"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

// scriptCommands are exposed to scripts as amazons_<name>(args). Each
// returns the command's output, or nil and an error message.
var scriptCommands = []string{
	"new", "show", "gen", "play", "undo", "search", "aiplay", "eval",
	"save", "load", "set", "standings",
}

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("amazons_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

func shellFunc(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		line := name
		if L.GetTop() > 0 {
			line += " " + L.ToString(1)
		}
		sc := getShell(L)
		cmd, err := extractFields(line)
		if err == nil {
			var r *Response
			r, err = sc.standardModeSwitch(cmd)
			if err == nil {
				if r == nil {
					r = msg("")
				}
				L.Push(lua.LString(r.message))
				return 1
			}
		}
		log.Err(err).Str("cmd", name).Msg("error-executing-script-command")
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
}

type scriptState struct {
	Moves    []string `json:"moves"`
	ToMove   string   `json:"to_move"`
	Winner   string   `json:"winner,omitempty"`
	Position string   `json:"position"`
}

// State returns the game as a table with moves, to_move, winner and
// position fields.
func State(L *lua.LState) int {
	sc := getShell(L)
	moves := sc.record.Moves
	if moves == nil {
		moves = []string{}
	}
	data, err := json.Marshal(scriptState{
		Moves:    moves,
		ToMove:   sc.side.String(),
		Winner:   sc.record.Winner,
		Position: sc.board.ToDisplayText(),
	})
	if err != nil {
		L.RaiseError("encoding state: %v", err)
		return 0
	}
	v, err := luajson.Decode(L, data)
	if err != nil {
		L.RaiseError("decoding state: %v", err)
		return 0
	}
	L.Push(v)
	return 1
}

// script runs a Lua file against this shell. Extra arguments are
// available to it in the arg table.
func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	L.PreloadModule("http", gluahttp.NewHttpModule(&http.Client{}).Loader)
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc
	L.SetGlobal("amazons_shell", lsc)
	for _, name := range scriptCommands {
		L.SetGlobal("amazons_"+name, L.NewFunction(shellFunc(name)))
	}
	L.SetGlobal("amazons_state", L.NewFunction(State))

	args := L.NewTable()
	for _, a := range cmd.args[1:] {
		args.Append(lua.LString(a))
	}
	L.SetGlobal("arg", args)

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Str("script", filepath).Msg("script-failed")
		return nil, err
	}
	return nil, nil
}
