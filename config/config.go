package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/fourplay/board"
	"github.com/domino14/fourplay/search"
)

const (
	ConfigDebug          = "debug"
	ConfigSearchDepth    = "search-depth"
	ConfigEvaluator      = "evaluator"
	ConfigBoard          = "board"
	ConfigLegacyLayout   = "legacy-layout"
	ConfigMoveOrder      = "move-order"
	ConfigAIPlayer       = "ai-player"
	ConfigNPSLogInterval = "nps-log-interval"
	ConfigCPUProfile     = "cpu-profile"
)

const (
	DefaultSearchDepth = search.DefaultDepth
	DefaultMoveOrder   = "3,2,4,1,5,0,6"
)

var ErrBadMoveOrder = errors.New("move order must list every column exactly once")

type Config struct {
	viper.Viper
}

// DefaultConfig returns a config holding only the defaults. It does not
// read flags, files or the environment.
func DefaultConfig() Config {
	c := Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigSearchDepth, DefaultSearchDepth)
	c.SetDefault(ConfigEvaluator, "pattern")
	c.SetDefault(ConfigBoard, "bitboard")
	c.SetDefault(ConfigLegacyLayout, false)
	c.SetDefault(ConfigMoveOrder, DefaultMoveOrder)
	c.SetDefault(ConfigAIPlayer, 2)
	c.SetDefault(ConfigNPSLogInterval, time.Second)
	c.SetDefault(ConfigCPUProfile, "")
}

// Load reads, in increasing priority: defaults, an optional config.yaml in
// $HOME/.fourplay or the working directory, FOURPLAY_* environment
// variables, and command-line flags.
func (c *Config) Load(args []string) error {
	return c.LoadFlags(pflag.NewFlagSet("fourplay", pflag.ContinueOnError), args)
}

// LoadFlags is Load with a caller's flag set, so a command can add flags of
// its own before parsing.
func (c *Config) LoadFlags(fs *pflag.FlagSet, args []string) error {
	c.Viper = *viper.New()
	c.setDefaults()

	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigSearchDepth, DefaultSearchDepth, "fixed search depth in plies")
	fs.String(ConfigEvaluator, "pattern", "static evaluator: pattern or window")
	fs.String(ConfigBoard, "bitboard", "board representation: bitboard or grid")
	fs.Bool(ConfigLegacyLayout, false, "pack the bitboard without guard bits (rows can wrap)")
	fs.String(ConfigMoveOrder, DefaultMoveOrder, "column priority order for the search")
	fs.Int(ConfigAIPlayer, 2, "which player the engine plays (1 or 2)")
	fs.Duration(ConfigNPSLogInterval, time.Second, "how often to log nodes per second during a search")
	fs.String(ConfigCPUProfile, "", "write a cpu profile to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("fourplay")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetConfigName("config")
	c.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		c.AddConfigPath(filepath.Join(home, ".fourplay"))
	}
	c.AddConfigPath(".")
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		log.Debug().Msg("no config file found, using defaults")
	}
	return c.validate()
}

func (c *Config) validate() error {
	if d := c.GetInt(ConfigSearchDepth); d < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", ConfigSearchDepth, d)
	}
	if p := c.GetInt(ConfigAIPlayer); p != 1 && p != 2 {
		return fmt.Errorf("%s must be 1 or 2, got %d", ConfigAIPlayer, p)
	}
	_, err := c.MoveOrder()
	return err
}

// MoveOrder parses the configured column priority.
func (c *Config) MoveOrder() ([]int, error) {
	return ParseMoveOrder(c.GetString(ConfigMoveOrder))
}

// ParseMoveOrder parses a comma-separated permutation of the columns.
func ParseMoveOrder(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	order := make([]int, 0, len(fields))
	for _, f := range fields {
		col, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadMoveOrder, err)
		}
		order = append(order, col)
	}
	if len(order) != board.Width || len(lo.Uniq(order)) != board.Width ||
		lo.Min(order) != 0 || lo.Max(order) != board.Width-1 {
		return nil, fmt.Errorf("%w: %q", ErrBadMoveOrder, s)
	}
	return order, nil
}

// SanitizedSettings is the settings map for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
