package main

import (
	"log"

	"captionvote/internal/cache"
	"captionvote/internal/config"
	"captionvote/internal/db"
	"captionvote/internal/handlers"
	"captionvote/internal/logger"
	"captionvote/internal/router"
	"captionvote/internal/services"
	"captionvote/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	conn, err := db.Connect(cfg, l)
	if err != nil {
		l.Fatal("database init failed", zap.Error(err))
	}

	feedCache, err := cache.New(cfg, l)
	if err != nil {
		l.Fatal("cache init failed", zap.Error(err))
	}

	votes := store.NewVoteStore(conn)
	svc := router.Services{
		Auth:    services.NewAuthService(store.NewUserStore(conn), l),
		Feed:    services.NewFeedService(store.NewCaptionStore(conn), votes, feedCache, cfg.FeedCacheTTL, l),
		Votes:   services.NewVoteService(votes, feedCache, cfg.VoteStrategy, l),
		PerPage: cfg.PerPage,
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.GinLogger(l), logger.GinRecovery(l))

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{Path: "/", MaxAge: 86400 * 30, HttpOnly: true})
	r.Use(sessions.Sessions("captionvote_session", sessionStore))

	renderer, err := handlers.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		l.Fatal("template load failed", zap.Error(err))
	}
	r.HTMLRender = renderer

	router.RegisterRoutes(r, svc)

	l.Info("server starting", zap.String("port", cfg.Port), zap.String("vote_strategy", cfg.VoteStrategy))
	if err := r.Run(":" + cfg.Port); err != nil {
		l.Fatal("server stopped", zap.Error(err))
	}
}
