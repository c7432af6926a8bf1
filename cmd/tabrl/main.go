package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tabrl/config"
	"github.com/domino14/tabrl/policy"
)

var (
	GitVersion string
)

const usage = `usage: tabrl <command> [flags]

commands:
  train                 train agents in parallel and save the merged tables
  play                  play tic-tac-toe (--x, --o: human, base or smart)
  merge OUT IN [IN...]  merge saved tables into OUT
  inspect FILE          print a summary of saved tables
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := &config.Config{}
	if err := cfg.Load(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Str("version", GitVersion).Interface("config", cfg.SanitizedSettings()).
		Msg("loaded-config")

	if p := cfg.GetString(config.ConfigCPUProfile); p != "" {
		f, err := os.Create(p)
		if err != nil {
			log.Err(err).Msg("could not create CPU profile")
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Err(err).Msg("could not start CPU profile")
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	pos := cfg.Args()
	if len(pos) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	var err error
	switch pos[0] {
	case "train":
		err = train(ctx, cfg)
	case "play":
		err = play(ctx, cfg)
	case "merge":
		err = merge(ctx, pos[1:])
	case "inspect":
		err = inspect(ctx, pos[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", pos[0])
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled), errors.Is(err, policy.ErrQuit):
		// nothing was saved
		log.Info().Msg("got quit signal, exiting")
		return 0
	default:
		log.Err(err).Msg("command-failed")
		return 1
	}
}
