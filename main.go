package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gohypo/adapters/postgres"
	"gohypo/adapters/render"
	"gohypo/adapters/transition"
	"gohypo/app"
	"gohypo/internal"
	"gohypo/internal/config"
	apperrors "gohypo/internal/errors"
	"gohypo/ui"
)

// initDatabase connects to the archive database and applies migrations
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, apperrors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to connect to database")
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, apperrors.Wrap(err, "failed to ping database")
	}

	migrator := postgres.NewMigrator(db)
	if err := migrator.Up(context.Background()); err != nil {
		return nil, apperrors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	logger := internal.NewDefaultLogger()
	repo := postgres.NewRunRepository(db)
	analysis := app.NewAnalysisService(transition.NewEngine(), repo, logger, appConfig.Analysis.Workers)

	renderer, err := render.NewRenderer(appConfig.Analysis.FigureFormat)
	if err != nil {
		log.Fatalf("Failed to configure renderer: %v", err)
	}

	httpApp := ui.NewApp(ui.Config{FigureFormat: renderer.Format()}, analysis, repo, renderer)
	log.Fatal(httpApp.Start(appConfig.Server.Port))
}
