package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yuuso/mossy/internal/config"
	"github.com/Yuuso/mossy/internal/repository/jsonfile"
	"github.com/Yuuso/mossy/internal/store"

	"github.com/joho/godotenv"
)

const maxLogFiles = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	// Structured logs go to a timestamped file so command output stays
	// clean. Fall back to stderr when the log directory is unusable.
	logOut := os.Stderr
	logFile, err := config.SetupLogFile(cfg.LogDir, maxLogFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, logging to stderr\n", err)
	} else {
		logOut = logFile
		defer logFile.Close()
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	prefs := jsonfile.NewPreferencesRepository(cfg.PrefsPath, logger)

	app := &app{
		cfg:    cfg,
		logger: logger,
		prefs:  prefs,
		store:  store.New(prefs, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand(app)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mossy: %v\n", err)
		os.Exit(1)
	}
}
