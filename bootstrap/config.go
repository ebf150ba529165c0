package bootstrap

import (
	"errors"
	"fmt"

	"chessmcts/game"
	"chessmcts/meta"
	"chessmcts/searcher"

	"github.com/spf13/viper"
)

const EnvPrefix = "CHESSMCTS"

type Config struct {
	LogLevel        string  `mapstructure:"log_level"`
	Seed            uint64  `mapstructure:"seed"`
	Iterations      int     `mapstructure:"iterations"`
	MaxIterations   int     `mapstructure:"max_iterations"`
	BranchingFactor int     `mapstructure:"branching_factor"`
	MaxDepth        int     `mapstructure:"max_depth"`
	Exploration     float64 `mapstructure:"exploration"`
	FullExpansion   bool    `mapstructure:"full_expansion"`
	CacheSize       int64   `mapstructure:"cache_size"`
	ListenAddr      string  `mapstructure:"listen_addr"`
	MaxTurns        int     `mapstructure:"max_turns"`
	Games           int     `mapstructure:"games"`
	OutputDir       string  `mapstructure:"output_dir"`
}

// NewViper returns a viper instance with every key defaulted and environment
// overrides enabled, e.g. CHESSMCTS_ITERATIONS.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("seed", meta.SEED)
	v.SetDefault("iterations", meta.ITERATIONS)
	v.SetDefault("max_iterations", meta.MAX_ITERATIONS)
	v.SetDefault("branching_factor", meta.BRANCHING_FACTOR)
	v.SetDefault("max_depth", meta.MAX_DEPTH)
	v.SetDefault("exploration", searcher.EXPLORATION)
	v.SetDefault("full_expansion", false)
	v.SetDefault("cache_size", game.DefaultCacheSize)
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("max_turns", meta.MAX_TURNS)
	v.SetDefault("games", 10)
	v.SetDefault("output_dir", "results")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Setup reads the optional config file at cfgPath on top of the defaults and
// environment of v.
func Setup(v *viper.Viper, cfgPath string) (*Config, error) {
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("iterations must be positive, got %d", c.Iterations))
	}
	if c.MaxIterations < c.Iterations {
		errs = append(errs, fmt.Errorf("max_iterations must be at least iterations (%d), got %d", c.Iterations, c.MaxIterations))
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if c.Exploration < 0 {
		errs = append(errs, fmt.Errorf("exploration must not be negative, got %g", c.Exploration))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize))
	}
	return errors.Join(errs...)
}

// SearchOptions translates the search settings into engine options.
func (c *Config) SearchOptions() []searcher.Option {
	options := []searcher.Option{
		searcher.WithSeed(c.Seed),
		searcher.WithBranchingFactor(c.BranchingFactor),
		searcher.WithMaxDepth(c.MaxDepth),
		searcher.WithExploration(c.Exploration),
	}
	if c.FullExpansion {
		options = append(options, searcher.WithFullExpansion())
	}
	return options
}

func (c *Config) ChessOptions() []game.ChessOption {
	return []game.ChessOption{game.WithCacheSize(c.CacheSize)}
}
