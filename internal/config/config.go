package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type GameConfig struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Hazards *int     `json:"hazards,omitempty"`
	Density *float64 `json:"density,omitempty"`
}

// Spec prefers a density over a hazard count, so a config file only
// setting a density overrides the default count.
func (g GameConfig) Spec() mines.HazardSpec {
	switch {
	case g.Density != nil:
		return mines.HazardDensity(*g.Density)
	case g.Hazards != nil:
		return mines.HazardCount(*g.Hazards)
	default:
		return mines.HazardCount(0)
	}
}

type LogFileConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

type Config struct {
	Mode     string        `json:"mode"`
	LogLevel string        `json:"log_level"`
	LogFile  LogFileConfig `json:"log_file"`
	Render   string        `json:"render"`
	Seed     *uint64       `json:"seed,omitempty"`
	Game     GameConfig    `json:"game"`
}

// Default is the beginner board: 9x9 with 10 hazards.
func Default() Config {
	hazards := 10
	return Config{
		Mode:     "production",
		LogLevel: "warn",
		LogFile: LogFileConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Render: "text",
		Game: GameConfig{
			Width:   9,
			Height:  9,
			Hazards: &hazards,
		},
	}
}

func (c Config) Fields() logrus.Fields {
	fields := logrus.Fields{
		"mode":      c.Mode,
		"log_level": c.LogLevel,
		"log_file":  c.LogFile.Path,
		"render":    c.Render,
		"width":     c.Game.Width,
		"height":    c.Game.Height,
		"hazards":   c.Game.Spec().String(),
	}
	if c.Seed != nil {
		fields["seed"] = *c.Seed
	}
	return fields
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func (c Config) Development() bool {
	return c.Mode != "production"
}

func (c Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(c.LogLevel)
}

func (c Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.Render {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown renderer %q", c.Render))
	}
	hazards, err := c.Game.Spec().Resolve(c.Game.Width, c.Game.Height)
	if err == nil {
		err = mines.GameParams{
			Width: c.Game.Width, Height: c.Game.Height, HazardCount: hazards,
		}.Validate()
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("game: %w", err))
	}
	return errors.Join(errs...)
}

func ReadConfig(path string, config *Config) error {
	if b, err := os.ReadFile(path); err != nil {
		return err
	} else {
		return json.Unmarshal(b, config)
	}
}

// ApplyEnv overrides config values with MINES_* env variables.
func ApplyEnv(config *Config) error {
	if Development() {
		config.Mode = "development"
	}
	if mode, ok := os.LookupEnv("MINES_MODE"); ok {
		config.Mode = mode
	}
	if level, ok := os.LookupEnv("MINES_LOG_LEVEL"); ok {
		config.LogLevel = strings.ToLower(level)
	}
	if path, ok := os.LookupEnv("MINES_LOG_FILE"); ok {
		config.LogFile.Path = path
	}
	if render, ok := os.LookupEnv("MINES_RENDER"); ok {
		config.Render = render
	}
	if seedStr, ok := os.LookupEnv("MINES_SEED"); ok {
		seed, err := strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			return fmt.Errorf("unable to parse MINES_SEED: %w", err)
		}
		config.Seed = &seed
	}
	if game, ok := os.LookupEnv("MINES_GAME"); ok {
		params, err := mines.ParseSeed(game)
		if err != nil {
			return fmt.Errorf("unable to parse MINES_GAME: %w", err)
		}
		config.Game = GameConfig{
			Width:   params.Width,
			Height:  params.Height,
			Hazards: &params.HazardCount,
		}
	}
	return nil
}

// Load starts from [Default], applies the JSON file at path (if path is not
// empty) and then env overrides.
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		if err := ReadConfig(path, &config); err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
