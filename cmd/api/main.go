package main

import (
	"fmt"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"roster/internal/config"
	"roster/internal/db"
	"roster/internal/logging"
	"roster/internal/routes"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel)

	conn, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	router := routes.SetupRouter(conn, cfg)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("addr", serverAddr).Msg("starting server")
	if err := router.Run(serverAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
