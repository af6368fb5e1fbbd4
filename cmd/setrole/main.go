// Package main provides a CLI tool for setting user roles, used to
// bootstrap the first game master account.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/foxobr/ficha-rpg/internal/config"
	"github.com/foxobr/ficha-rpg/internal/game/session"
	"github.com/foxobr/ficha-rpg/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	email := flag.String("email", "", "target user email (required)")
	role := flag.String("role", "", "role to assign: player or admin (required)")
	flag.Parse()

	if *email == "" || *role == "" {
		flag.Usage()
		os.Exit(1)
	}

	if !session.ValidRole(*role) {
		log.Fatalf("invalid role %q: must be player or admin", *role)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewUserRepository(pool.DB(), bcrypt.DefaultCost)
	if err := repo.SetRole(ctx, *email, *role); err != nil {
		log.Fatalf("setting role for %q: %v", *email, err)
	}

	fmt.Fprintf(os.Stdout, "set role for %s: %s [%s]\n", *email, *role, time.Since(start))
}
