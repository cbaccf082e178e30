package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"roster/internal/config"
	"roster/internal/db"
	"roster/internal/logging"
	"roster/internal/tasks"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.LogLevel)

	conn, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().Str("path", cfg.DatabasePath).Msg("worker connected to database")

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	refreshTask, err := tasks.NewRefreshRosterTask("schedule")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create refresh task")
	}

	entryID, err := scheduler.Register(cfg.Schedule, refreshTask, asynq.Queue("default"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register periodic task")
	}
	log.Info().Str("task", refreshTask.Type()).Str("entry_id", entryID).Str("schedule", cfg.Schedule).Msg("registered periodic task")

	// one writer at a time: every run replaces the whole table
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				"default": 1,
			},
			Concurrency: 1,
		},
	)

	taskProcessor := tasks.NewTaskProcessor(conn, cfg)

	mux := asynq.NewServeMux()
	mux.HandleFunc(
		tasks.TypeTaskRefreshRoster,
		taskProcessor.HandleRefreshRosterTask,
	)

	go func() {
		log.Info().Msg("starting asynq scheduler")
		if err := scheduler.Run(); err != nil {
			log.Fatal().Err(err).Msg("could not run asynq scheduler")
		}
	}()

	go func() {
		log.Info().Msg("starting asynq worker server")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("could not run asynq worker server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Info().Msg("shutdown signal received, shutting down gracefully")

	scheduler.Shutdown()
	log.Info().Msg("asynq scheduler shut down")

	srv.Shutdown()
	log.Info().Msg("asynq worker server shut down")

	if err := db.Close(conn); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
	log.Info().Msg("worker process shut down complete")
}
