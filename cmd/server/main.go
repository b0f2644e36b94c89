package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/api"
	"github.com/wollyshare/wollyshare/internal/app"
	iauth "github.com/wollyshare/wollyshare/internal/auth"
	"github.com/wollyshare/wollyshare/internal/cache"
	"github.com/wollyshare/wollyshare/internal/database"
	"github.com/wollyshare/wollyshare/internal/maintenance"
	"github.com/wollyshare/wollyshare/internal/notify"
	"github.com/wollyshare/wollyshare/internal/realtime"
	"github.com/wollyshare/wollyshare/internal/services"
	"github.com/wollyshare/wollyshare/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("wollyshare-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := configureLogging(cfg); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	var statsCache cache.Store = cache.NewMemoryStore()
	if cfg.Cache.Redis.Enabled {
		client, redisErr := cache.NewRedisClient(cfg.Cache.RedisClientConfig())
		if redisErr != nil {
			log.Warn("redis unavailable; falling back to in-memory cache", zap.Error(redisErr))
		} else {
			statsCache = client
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}
	defer func() {
		if rc, ok := statsCache.(*cache.RedisClient); ok && rc != nil {
			_ = rc.Close()
		}
	}()

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	hub := realtime.NewHub()

	var relay *notify.Relay
	if cfg.Chat.Enabled {
		sender, senderErr := notify.NewTelegramSender(notify.TelegramConfig{
			BaseURL:  cfg.Chat.BaseURL,
			BotToken: cfg.Chat.BotToken,
			Timeout:  cfg.Chat.Timeout,
		})
		if senderErr != nil {
			return fmt.Errorf("initialise chat sender: %w", senderErr)
		}
		relay, err = notify.NewRelay(db, sender)
		if err != nil {
			return fmt.Errorf("initialise notification relay: %w", err)
		}
		log.Info("chat notifications enabled")
	} else {
		log.Info("chat notifications disabled; borrow requests will not notify")
	}

	inviteSvc, err := services.NewInviteService(db,
		services.WithInviteBaseURL(cfg.Server.BaseURL),
		services.WithInviteExpiry(cfg.Invites.Expiry),
		services.WithInviteTokenSize(cfg.Invites.TokenLength),
	)
	if err != nil {
		return fmt.Errorf("initialise invite service: %w", err)
	}

	authSvc, err := services.NewAuthService(db, jwtService, inviteSvc)
	if err != nil {
		return fmt.Errorf("initialise auth service: %w", err)
	}

	profileSvc, err := services.NewProfileService(db)
	if err != nil {
		return fmt.Errorf("initialise profile service: %w", err)
	}

	itemSvc, err := services.NewItemService(db,
		services.WithItemCache(statsCache, cfg.Cache.StatsTTL),
		services.WithItemBroadcaster(hub),
	)
	if err != nil {
		return fmt.Errorf("initialise item service: %w", err)
	}

	borrowOpts := []services.BorrowOption{services.WithBorrowBroadcaster(hub)}
	if relay != nil {
		borrowOpts = append(borrowOpts, services.WithBorrowNotifier(relay))
	}
	borrowSvc, err := services.NewBorrowService(db, borrowOpts...)
	if err != nil {
		return fmt.Errorf("initialise borrow service: %w", err)
	}

	locationSvc, err := services.NewLocationService(db)
	if err != nil {
		return fmt.Errorf("initialise location service: %w", err)
	}

	memberSvc, err := services.NewMemberService(db)
	if err != nil {
		return fmt.Errorf("initialise member service: %w", err)
	}

	cleaner := maintenance.NewCleaner(db, inviteSvc,
		maintenance.WithInviteSchedule(cfg.Invites.SweepSpec),
	)
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer func() {
		stopCtx := cleaner.Stop()
		if err := cleaner.RunOnce(stopCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}()

	router, err := api.NewRouter(api.Deps{
		Config:    cfg,
		JWT:       jwtService,
		Hub:       hub,
		Relay:     relay,
		Auth:      authSvc,
		Profiles:  profileSvc,
		Items:     itemSvc,
		Borrows:   borrowSvc,
		Locations: locationSvc,
		Members:   memberSvc,
		Invites:   inviteSvc,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func configureLogging(cfg *app.Config) error {
	if cfg.Server.LogPretty {
		return logger.InitDevelopment(cfg.Server.LogLevel)
	}
	return logger.Init(cfg.Server.LogLevel)
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseConnConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
