package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/idilsaglam/itask/internal/app"
	"github.com/idilsaglam/itask/internal/cli"
	"github.com/idilsaglam/itask/internal/config"
	"github.com/idilsaglam/itask/internal/logging"
	"github.com/idilsaglam/itask/internal/store"
	"github.com/idilsaglam/itask/internal/store/jsonstore"
	"github.com/idilsaglam/itask/internal/store/memstore"
	"github.com/idilsaglam/itask/internal/store/sqlitestore"
	"github.com/idilsaglam/itask/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	cfg, args, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(2)
	}

	// mono disables color itself, so it has to come after the flag.
	ui.SetColorForcing(false, cfg.NoColor)
	ui.SetTheme(cfg.Theme)

	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	logOut, closeLog, err := logWriter(cfg, args[0] == "tui")
	if err != nil {
		ui.Fail("log: " + err.Error())
		os.Exit(1)
	}
	defer closeLog()
	logger := logging.New(logOut, logging.Options{
		Level:           cfg.LogLevel,
		Format:          cfg.LogFormat,
		ReportTimestamp: cfg.LogFile != "",
	})

	slot, closeSlot, err := openSlot(cfg)
	if err != nil {
		ui.Fail("storage: " + err.Error())
		os.Exit(1)
	}
	logger.Debug("storage opened", "backend", cfg.Backend, "data", cfg.DataPath)

	a := app.New(app.Deps{
		Slot:            slot,
		Logger:          logger,
		Confirm:         cli.Prompt(os.Stdin, os.Stdout),
		TasksKey:        cfg.TasksKey,
		ShowFinishedKey: cfg.ShowFinishedKey,
	})

	// Hand the remaining args to the CLI runner.
	code := cli.Run(a, args, cli.Options{
		Group: cfg.Group,
		Yes:   cfg.Yes,
	})
	if err := closeSlot(); err != nil {
		logger.Error("close storage", "err", err)
	}
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	closeLog()
	os.Exit(code)
}

func openSlot(cfg *config.Config) (store.Slot, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.BackendMemory:
		return memstore.New(nil), noop, nil
	case config.BackendSQLite:
		s, err := sqlitestore.New(cfg.DataPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		s, err := jsonstore.New(cfg.DataPath)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	}
}

// logWriter keeps the alternate screen clean: in TUI mode logs only go to a file.
func logWriter(cfg *config.Config, tui bool) (io.Writer, func(), error) {
	if cfg.LogFile == "" {
		if tui {
			return io.Discard, func() {}, nil
		}
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.LogFile, err)
	}
	closed := false
	return f, func() {
		if !closed {
			closed = true
			_ = f.Close()
		}
	}, nil
}
