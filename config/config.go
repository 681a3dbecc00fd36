// Package config loads settings from, in increasing priority, built-in
// defaults, an optional YAML file, AMAZONS_* environment variables and
// command-line flags.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug         = "debug"
	ConfigLogLevel      = "log-level"
	ConfigTimePerTurn   = "time-per-turn"
	ConfigEvaluator     = "evaluator"
	ConfigThreads       = "threads"
	ConfigAutoplayLog   = "autoplay-log"
	ConfigBlack         = "black"
	ConfigCPUProfile    = "cpu-profile"
	ConfigConfigFile    = "config-file"
	ConfigEvalCache     = "eval-cache"
	ConfigNatsURL       = "nats-url"
	ConfigResultSubject = "result-subject"
	ConfigGameDB        = "game-db"
)

// Config wraps a viper instance so every binary and test reads settings
// the same way.
type Config struct {
	*viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigLogLevel, "info")
	v.SetDefault(ConfigTimePerTurn, 10*time.Second)
	v.SetDefault(ConfigEvaluator, "reachability")
	v.SetDefault(ConfigThreads, 1)
	v.SetDefault(ConfigAutoplayLog, "/tmp/autoplay.txt")
	v.SetDefault(ConfigBlack, false)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigEvalCache, 0.0)
	v.SetDefault(ConfigNatsURL, "nats://127.0.0.1:4222")
	v.SetDefault(ConfigResultSubject, "amazons.results")
	v.SetDefault(ConfigGameDB, "")
}

// DefaultConfig has only the built-in defaults. Tests use it.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{v}
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("amazons", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigLogLevel, "info", "log level: debug, info, warn or error")
	fs.Duration(ConfigTimePerTurn, 10*time.Second, "search time per move")
	fs.String(ConfigEvaluator, "reachability", "leaf evaluator name, or name:weight,... for a weighted mix")
	fs.Int(ConfigThreads, 1, "goroutines to search root moves with")
	fs.String(ConfigAutoplayLog, "/tmp/autoplay.txt", "where computer-vs-computer games are logged")
	fs.Bool(ConfigBlack, false, "play Black instead of White")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.Float64(ConfigEvalCache, 0, "fraction of system memory for the leaf evaluation cache; 0 disables it")
	fs.String(ConfigNatsURL, "nats://127.0.0.1:4222", "NATS server for published game results")
	fs.String(ConfigResultSubject, "amazons.results", "NATS subject finished games are published on")
	fs.String(ConfigGameDB, "", "sqlite database that autoplay results are also stored in")
	fs.String(ConfigConfigFile, "", "YAML config file; defaults to $HOME/.amazons/config.yaml if present")
	return fs
}

// Load builds the configuration from args (without the program name).
func (c *Config) Load(args []string) error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("amazons")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := flagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	cfgFile := v.GetString(ConfigConfigFile)
	if cfgFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfgFile = filepath.Join(home, ".amazons", "config.yaml")
			if _, err := os.Stat(cfgFile); err != nil {
				cfgFile = ""
			}
		}
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
		log.Debug().Str("file", cfgFile).Msg("read-config-file")
	}
	c.Viper = v
	return nil
}
