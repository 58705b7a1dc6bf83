package main

import (
	"database/sql"
	"flag"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/ssth/ssth-inventory/internal/app"
	"github.com/ssth/ssth-inventory/migrations"
)

func main() {
	_ = godotenv.Load()

	command := flag.String("command", "up", "goose command: up, down, status, version")
	flag.Parse()

	logger := app.NewLogger(&app.Config{LogFormat: os.Getenv("LOG_FORMAT")})

	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		logger.Error("PG_DSN is required")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Error("open db", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Error("goose dialect", slog.Any("error", err))
		os.Exit(1)
	}

	if err := goose.Run(*command, db, "."); err != nil {
		logger.Error("goose "+*command, slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied", slog.String("command", *command))
}
