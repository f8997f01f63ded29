package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rezmor/todo-rest-api/internal/auth"
	"github.com/rezmor/todo-rest-api/internal/config"
	"github.com/rezmor/todo-rest-api/internal/database"
	"github.com/rezmor/todo-rest-api/internal/handler"
	"github.com/rezmor/todo-rest-api/internal/middleware"
	"github.com/rezmor/todo-rest-api/internal/queue"
	"github.com/rezmor/todo-rest-api/internal/repository"
	"github.com/rezmor/todo-rest-api/internal/router"
	"github.com/rezmor/todo-rest-api/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.NewConsoleWriter())
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	migCtx, migCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer migCancel()
	if err := database.Migrate(migCtx, db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	lists := repository.NewListRepo(db)
	tasks := repository.NewTaskRepo(db)
	resets := repository.NewResetRepo(db)

	// auth core
	issuer := auth.NewIssuer(auth.IssuerConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	})
	session := auth.NewSession(auth.NewVerifier(users), issuer, tokens, users, lists)

	// handlers
	authH := handler.NewAuthHandler(cfg, users, lists, session, issuer)
	resetH := handler.NewResetHandler(cfg, users, resets, tokens)
	listH := handler.NewListHandler(lists)
	taskH := handler.NewTaskHandler(lists, tasks)
	avatarH := handler.NewAvatarHandler(users, storage.NewAvatarStore(storage.Config{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}))

	oauthCtx, oauthCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer oauthCancel()
	oauthH, err := handler.NewOAuthHandler(oauthCtx, cfg, session, authH)
	if err != nil {
		log.Fatal().Err(err).Msg("oidc discovery")
	}
	if oauthH == nil {
		log.Info().Msg("google oauth not configured; sign-in routes disabled")
	}

	// response cache (degrades to a no-op when redis is unreachable)
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable; response cache disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// background mail consumer
	if cfg.SMTPHost != "" {
		go func() {
			if err := queue.StartResetMailConsumer(queue.MailConfig{
				Host: cfg.SMTPHost,
				Port: cfg.SMTPPort,
				From: cfg.SMTPFrom,
			}); err != nil {
				log.Error().Err(err).Msg("reset mail consumer stopped")
			}
		}()
	} else {
		log.Info().Msg("smtp not configured; reset mail consumer disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, resetH, cfg.Auth.AccessSecret)
	router.RegisterOAuth(e, oauthH)
	router.RegisterAPI(e, listH, taskH, avatarH, cfg.Auth.AccessSecret, cache)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
