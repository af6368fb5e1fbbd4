// Package main provides the API server binary backed by PostgreSQL.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foxobr/ficha-rpg/internal/auth"
	"github.com/foxobr/ficha-rpg/internal/config"
	"github.com/foxobr/ficha-rpg/internal/game/catalog"
	"github.com/foxobr/ficha-rpg/internal/game/session"
	"github.com/foxobr/ficha-rpg/internal/httpapi"
	"github.com/foxobr/ficha-rpg/internal/observability"
	"github.com/foxobr/ficha-rpg/internal/server"
	"github.com/foxobr/ficha-rpg/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

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
	logger.Info("catalogs loaded",
		zap.Int("classes", len(cat.ClassNames())),
		zap.Int("skill_categories", len(cat.SkillCategories())),
		zap.Int("conditions", len(cat.ConditionNames())),
	)

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	users := postgres.NewUserRepository(pool.DB(), cfg.Auth.BcryptCost)
	sessions := postgres.NewSessionRepository(pool.DB())

	presence := session.NewTracker(cfg.Client.PresenceWindow)
	svc := session.NewService(sessions, presence, logger.Named("session"))

	tokens := auth.NewTokenManager(cfg.Auth)
	mw := auth.NewMiddleware(tokens, users)

	health := func(ctx context.Context) error {
		return pool.Health(ctx, 2*time.Second)
	}
	handlers := httpapi.NewHandlers(svc, users, tokens, cat, health, logger.Named("http"))

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(handlers, mw, logger.Named("http"))

	lc := server.NewLifecycle(logger)
	lc.Add("http", server.NewHTTPService(cfg.HTTP, router, logger))

	logger.Info("server ready",
		zap.String("addr", cfg.HTTP.Addr()),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(ctx); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
