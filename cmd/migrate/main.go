package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"backoffice-backend/internal/config"
	"backoffice-backend/internal/infrastructure/database"
	"backoffice-backend/pkg/logger"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding the SQL migrations")
	direction := flag.String("direction", database.MigrateUp, "up or down (one step)")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load database config")
	}

	if err := database.RunMigrations(dbConfig, *dir, *direction); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
