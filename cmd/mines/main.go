package main

import (
	"context"
	"errors"
	"flag"
	"hash/maphash"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/console"
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

var (
	log = logrus.New()

	configPath string
	jsonOutput bool
	seed       uint64
)

func init() {
	const usage = "config file path"
	flag.StringVar(&configPath, "config", "", usage)
	flag.StringVar(&configPath, "c", "", usage+" (shorthand)")
	flag.BoolVar(&jsonOutput, "json", false, "print views as JSON lines")
	flag.Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
}

func setupLogging(cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if cfg.Development() {
		level = max(level, logrus.DebugLevel)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: cfg.Development()})

	if cfg.LogFile.Path != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   cfg.LogFile.Path,
			MaxSize:    cfg.LogFile.MaxSizeMB,
			MaxBackups: cfg.LogFile.MaxBackups,
			MaxAge:     cfg.LogFile.MaxAgeDays,
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return err
		}
		log.AddHook(hook)
		// the terminal belongs to the board once logs go to a file
		log.SetOutput(io.Discard)
	}

	mines.Log = log
	return nil
}

func createRand(cfg *config.Config) *rand.Rand {
	if cfg.Seed != nil {
		return rand.New(rand.NewPCG(*cfg.Seed, *cfg.Seed))
	}
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func main() {
	mainCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal("unable to load .env: ", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if jsonOutput {
		cfg.Render = "json"
	}
	if seed != 0 {
		cfg.Seed = &seed
	}

	if err := setupLogging(cfg); err != nil {
		log.Fatal("unable to set up logging: ", err)
	}

	log.Info("starting up, mode = ", cfg.Mode)
	log.WithFields(cfg.Fields()).Debug("config")

	renderer, err := console.NewRenderer(cfg.Render)
	if err != nil {
		log.Fatal(err)
	}

	con := console.New(os.Stdout, console.Options{
		Logger:   log,
		Rand:     createRand(cfg),
		Renderer: renderer,
		Width:    cfg.Game.Width,
		Height:   cfg.Game.Height,
		Hazards:  cfg.Game.Spec(),
	})

	g, gCtx := errgroup.WithContext(mainCtx)
	g.Go(func() error {
		// quitting the console ends the program as a signal would
		defer stop()
		return con.Run(gCtx, os.Stdin)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("exit reason: %s", err)
		os.Exit(1)
	}
}
