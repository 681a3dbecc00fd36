package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/amazons/equity"
)

// ShellCompleter completes command names, options and a few argument
// values.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"search": {
		Options: []string{"-time", "-depth", "-threads", "-log"},
	},
	"aiplay": {
		Options: []string{"-time", "-depth", "-threads", "-log"},
	},
	"autoplay": {
		Options: []string{"-games", "-threads", "-time", "-opening", "-p1", "-p2", "-log", "-db", "-publish"},
		Args:    []string{"stop"},
	},
	"load": {
		Options: []string{"-db"},
	},
	"gen": {
		Args: []string{"all"},
	},
	"set": {
		Args: []string{"autoplay-log", "eval-cache", "evaluator", "game-db", "threads", "time-per-turn"},
	},
	"help": {
		Args: []string{"autoplay", "eval", "script", "search", "set"},
	},
}

var commandNames = []string{
	"new", "s", "show", "gen", "play", "undo", "search", "aiplay", "eval",
	"autoplay", "analyze", "standings", "save", "load", "set", "help",
	"script", "exit",
}

var boolValues = []string{"true", "false"}
var playerKinds = []string{"engine", "random", "exec:"}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// Unterminated quote, most likely.
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "log":
				if cmdName != "autoplay" {
					completions = boolValues
				}
			case "p1", "p2":
				completions = playerKinds
			}
		}
		if completions == nil && cmdName == "eval" {
			completions = append([]string{"squares"}, equity.Names()...)
		}
		if completions == nil {
			if metadata, ok := commandMetadata[cmdName]; ok {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
