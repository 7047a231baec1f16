package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/gatherly-app/gatherly-api/internal/cache"
	"github.com/gatherly-app/gatherly-api/internal/config"
	"github.com/gatherly-app/gatherly-api/internal/database"
	"github.com/gatherly-app/gatherly-api/internal/modules/account"
	"github.com/gatherly-app/gatherly-api/internal/notification"
	"github.com/gatherly-app/gatherly-api/internal/notification/templates"
	"github.com/gatherly-app/gatherly-api/internal/server"
	"github.com/gatherly-app/gatherly-api/internal/session"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on" short:"p" default:"8080"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		// Use a structured logger
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		cfg := config.Load()
		if cfg == nil {
			logger.Error("failed to load configuration")
			os.Exit(1)
		}
		logger.Info("configuration loaded successfully", "env", cfg.Server.Env)

		// --- Database & Cache ---
		dbPool := database.NewPostgresPool(cfg.Database.URL)
		if dbPool == nil {
			logger.Error("failed to connect to postgres")
			os.Exit(1)
		}
		hooks.OnStop(dbPool.Close)
		logger.Info("successfully connected to postgres database")
		redisClient, err := cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		hooks.OnStop(func() { redisClient.Close() })
		logger.Info("successfully connected to redis")

		// --- Notifications ---
		renderer := templates.NewEngine()
		emailSender := notification.NewSMTPEmailSender(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, logger,
		)
		mailer := notification.NewService(logger, renderer, emailSender)

		// --- Sessions ---
		sessions := session.NewPostgresProvider(dbPool, session.Config{
			SlidingTTL:          time.Duration(cfg.Session.SlidingHours) * time.Hour,
			AbsoluteTTL:         time.Duration(cfg.Session.AbsoluteHours) * time.Hour,
			RememberSlidingTTL:  time.Duration(cfg.Session.RememberSlidingHours) * time.Hour,
			RememberAbsoluteTTL: time.Duration(cfg.Session.RememberAbsoluteHours) * time.Hour,
		})

		// --- Module Initialization (Bottom-Up) ---

		// Account Module
		accountRepo := account.NewRepository(dbPool)
		accountService := account.NewService(&account.Config{
			Repo:     accountRepo,
			Logger:   logger,
			Config:   cfg,
			Limiter:  cache.NewLimiter(redisClient),
			Mailer:   mailer,
			Renderer: renderer,
		})

		// Dormancy sweep, guarded by a redis lock so replicas don't overlap.
		sweeper := account.NewSweeper(
			accountService,
			cache.NewLocker(redisClient),
			logger,
			time.Duration(cfg.Dormancy.SweepHours)*time.Hour,
		)
		sweepCtx, stopSweep := context.WithCancel(context.Background())
		hooks.OnStart(func() { go sweeper.Run(sweepCtx) })
		hooks.OnStop(stopSweep)

		router := server.New(cfg, logger, accountService, sessions)
		hooks.OnStart(func() {
			logger.Info(fmt.Sprintf("Starting server on port %d...", options.Port))
			if err := http.ListenAndServe(fmt.Sprintf(":%d", options.Port), router); err != nil {
				slog.Error("Server failed to start", "error", err)
				os.Exit(1)
			}
		})
	})
	cli.Run()
}
