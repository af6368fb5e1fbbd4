// Package main provides the all-in-one development server. It serves the
// full API from in-memory stores, so no database is needed, and seeds a
// ready-to-use game master account.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxobr/ficha-rpg/internal/auth"
	"github.com/foxobr/ficha-rpg/internal/config"
	"github.com/foxobr/ficha-rpg/internal/game/catalog"
	"github.com/foxobr/ficha-rpg/internal/game/session"
	"github.com/foxobr/ficha-rpg/internal/httpapi"
	"github.com/foxobr/ficha-rpg/internal/observability"
	"github.com/foxobr/ficha-rpg/internal/server"
	"github.com/foxobr/ficha-rpg/internal/storage/memory"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	adminEmail := flag.String("admin-email", "gm@localhost", "seeded game master email")
	adminPassword := flag.String("admin-password", "localdev1", "seeded game master password")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cat, err := catalog.Default()
	if err != nil {
		logger.Fatal("loading catalogs", zap.Error(err))
	}

	users := memory.NewUserStore(bcrypt.MinCost)
	admin, err := users.Create(context.Background(), *adminEmail, *adminPassword, "Game Master", session.RoleAdmin)
	if err != nil {
		logger.Fatal("seeding admin", zap.Error(err))
	}
	logger.Info("seeded game master",
		zap.String("email", admin.Email),
		zap.String("user_id", admin.ID),
	)

	presence := session.NewTracker(cfg.Client.PresenceWindow)
	svc := session.NewService(memory.NewSessionStore(), presence, logger.Named("session"))

	tokens := auth.NewTokenManager(cfg.Auth)
	handlers := httpapi.NewHandlers(svc, users, tokens, cat, nil, logger.Named("http"))

	gin.SetMode(gin.DebugMode)
	router := httpapi.NewRouter(handlers, auth.NewMiddleware(tokens, users), logger.Named("http"))

	lc := server.NewLifecycle(logger)
	lc.Add("http", server.NewHTTPService(cfg.HTTP, router, logger))

	logger.Info("dev server ready",
		zap.String("addr", cfg.HTTP.Addr()),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(context.Background()); err != nil {
		logger.Fatal("dev server exited", zap.Error(err))
	}
}
