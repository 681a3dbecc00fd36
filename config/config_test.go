package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.Equal(c.GetDuration(ConfigTimePerTurn), 10*time.Second)
	is.Equal(c.GetString(ConfigEvaluator), "reachability")
	is.Equal(c.GetInt(ConfigThreads), 1)
	is.Equal(c.GetBool(ConfigBlack), false)
	is.Equal(c.GetString(ConfigAutoplayLog), "/tmp/autoplay.txt")
	is.Equal(c.GetFloat64(ConfigEvalCache), 0.0)
	is.Equal(c.GetString(ConfigResultSubject), "amazons.results")
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	t.Setenv("HOME", t.TempDir())
	c := &Config{}
	is.NoErr(c.Load([]string{"--threads", "4", "--black", "--time-per-turn=250ms"}))
	is.Equal(c.GetInt(ConfigThreads), 4)
	is.True(c.GetBool(ConfigBlack))
	is.Equal(c.GetDuration(ConfigTimePerTurn), 250*time.Millisecond)
	is.Equal(c.GetString(ConfigEvaluator), "reachability")
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AMAZONS_EVALUATOR", "mobility")
	t.Setenv("AMAZONS_TIME_PER_TURN", "2s")
	c := &Config{}
	is.NoErr(c.Load(nil))
	is.Equal(c.GetString(ConfigEvaluator), "mobility")
	is.Equal(c.GetDuration(ConfigTimePerTurn), 2*time.Second)
}

func TestLoadFile(t *testing.T) {
	is := is.New(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".amazons")
	is.NoErr(os.MkdirAll(dir, 0o755))
	is.NoErr(os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("threads: 3\nevaluator: race\n"), 0o644))

	c := &Config{}
	is.NoErr(c.Load([]string{"--evaluator", "floodfill"}))
	is.Equal(c.GetInt(ConfigThreads), 3)
	// Flags beat the file.
	is.Equal(c.GetString(ConfigEvaluator), "floodfill")
}

func TestLoadBadFlag(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.True(c.Load([]string{"--no-such-flag"}) != nil)
}
