package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/kita-portal/kita-api/internal/repository"
	"github.com/kita-portal/kita-api/internal/service"
	"github.com/kita-portal/kita-api/pkg/config"
	"github.com/kita-portal/kita-api/pkg/database"
	"github.com/kita-portal/kita-api/pkg/logger"
	"github.com/kita-portal/kita-api/pkg/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	validate := validation.Default()
	userRepo := repository.NewUserRepository(db)

	cli := &commandLine{
		out:     os.Stdout,
		migrate: func() error { return database.Migrate(db, logr) },
		accounts: service.NewAuthService(userRepo, repository.NewAuthRepository(db), nil, validate, logr, service.AuthConfig{
			Secret:     cfg.Session.Secret,
			SessionTTL: cfg.Session.TTL,
		}),
		roles: service.NewLifecycleService(repository.NewLifecycleRepository(db), userRepo, nil, validate, logr),
	}

	if err := cli.run(context.Background(), os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
