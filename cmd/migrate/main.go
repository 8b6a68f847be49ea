package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/infra/config"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/logger"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/migrations"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status]\n", os.Args[0])
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, command, cfg.Postgres.DSN()); err != nil {
		lg.Error("migration failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
	lg.Info("migration finished", zap.String("command", command), zap.String("database", cfg.Postgres.Database))
}

func run(ctx context.Context, command, dsn string) error {
	db, err := migrations.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		return migrations.Up(ctx, db)
	case "down":
		return migrations.Down(ctx, db)
	case "status":
		return migrations.Status(ctx, db)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
