// Command migrate aplica las migraciones goose embebidas.
//
//	go run ./cmd/migrate -cmd up
//	go run ./cmd/migrate -cmd down
//	go run ./cmd/migrate -cmd status
package main

import (
	"context"
	"flag"

	"github.com/jhoicas/sanse-api/internal/infrastructure/postgres"
	"github.com/jhoicas/sanse-api/pkg/config"
	"github.com/jhoicas/sanse-api/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	command := flag.String("cmd", "up", "comando goose: up, down, status, version, redo, reset")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "sanse-migrate"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, *command, flag.Args()...); err != nil {
		log.Fatal().Err(err).Str("cmd", *command).Msg("migración fallida")
	}
	log.Info().Str("cmd", *command).Msg("migración completada")
}
