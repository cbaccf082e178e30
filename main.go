package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"roster/internal/config"
	"roster/internal/db"
	"roster/internal/logging"
	"roster/internal/pipeline"
)

// Runs the roster pipeline once and exits non-zero if any stage fails.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Setup("debug")
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	flag.StringVar(&cfg.SourceURL, "url", cfg.SourceURL, "page holding the roster table")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database file")
	flag.StringVar(&cfg.TableName, "table", cfg.TableName, "table to replace")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flag.Parse()

	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}()

	res, err := pipeline.New(conn, cfg).Run(ctx)
	if err != nil {
		stop()
		_ = db.Close(conn)
		os.Exit(1)
	}

	log.Info().Int("records", res.Records).Int("warnings", res.Diagnostics.Len()).Str("db", cfg.DatabasePath).Msg("roster loaded")
}
