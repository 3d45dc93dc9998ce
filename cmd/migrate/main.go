package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named(logger.ComponentMigrate)

	db, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir conexión")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping DB")
	}

	log.Info().Str("cmd", *cmd).Msg("ejecutando migraciones")
	if err := postgres.Migrate(ctx, db, *cmd, flag.Args()...); err != nil {
		log.Error().Err(err).Msg("migración fallida")
		os.Exit(1)
	}
	log.Info().Str("cmd", *cmd).Msg("migraciones aplicadas")
}
