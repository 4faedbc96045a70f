package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idle-fm-api/infrastructure/cache"
	youtubeclient "idle-fm-api/infrastructure/clients/youtube"
	"idle-fm-api/infrastructure/configuration"
	"idle-fm-api/infrastructure/logger"
	"idle-fm-api/infrastructure/mailer"
	"idle-fm-api/infrastructure/persistence"
	"idle-fm-api/infrastructure/realtime"
	"idle-fm-api/infrastructure/utils"
	httpHandler "idle-fm-api/interfaces/http"
	"idle-fm-api/interfaces/middleware"
	"idle-fm-api/server"
	"idle-fm-api/usecase"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()

	app := configuration.C.App
	logger.SetLevel(app.LogLevel)
	if app.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		command := persistence.MigrateUp
		if len(os.Args) > 2 {
			command = os.Args[2]
		}
		if err := runMigrations(context.Background(), command); err != nil {
			logger.GetLogger().WithField("error", err).Error("Migration command failed")
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func runMigrations(ctx context.Context, command string) error {
	db, err := persistence.NewMSSQLDB(configuration.C.Database.Mssql)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := persistence.NewMigrator(db, configuration.C.App.Env == "development")
	if err != nil {
		return err
	}
	return migrator.Run(ctx, command)
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	app := configuration.C.App
	if app.SecretKey == "" {
		return fmt.Errorf("refusing to start: %w", utils.ErrMissingSecret)
	}

	db, err := persistence.NewMSSQLDB(configuration.C.Database.Mssql)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	defer db.Close()
	logger.GetLogger().Info("Database connected.")

	if app.MigrateOnStart {
		migrator, err := persistence.NewMigrator(db, false)
		if err != nil {
			return err
		}
		if err := migrator.Run(ctx, persistence.MigrateUp); err != nil {
			return err
		}
	}

	youtubeConfig := configuration.GetYouTubeConfig()
	youtubeClient, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:       youtubeConfig.APIKey,
		ClientID:     youtubeConfig.ClientID,
		ClientSecret: youtubeConfig.ClientSecret,
		RedirectURL:  youtubeConfig.RedirectURL,
		RefreshToken: youtubeConfig.RefreshToken,
		MaxResults:   youtubeConfig.MaxResults,
	})
	if err != nil {
		return fmt.Errorf("youtube client initialization failed: %w", err)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"hasAPIKey":       youtubeConfig.APIKey != "",
		"hasRefreshToken": youtubeConfig.RefreshToken != "",
	}).Info("YouTube client initialized")

	rl := configuration.C.RateLimit
	var searchLimiter middleware.RateLimiter
	if configuration.C.RedisClient.Enabled() {
		redisClient, err := cache.NewCache(ctx, configuration.C.RedisClient)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Redis not available - falling back to in-process rate limiting")
		} else {
			defer redisClient.Close()
			searchLimiter = middleware.NewSharedRateLimiter(cache.NewWindowCounter(redisClient, "ratelimit:search"), rl.Requests, rl.Window())
		}
	}
	if searchLimiter == nil {
		searchLimiter = middleware.NewIPRateLimiter(rl.Requests, rl.Window(), rl.Burst, 10*time.Minute)
	}

	mail := mailer.NewMailer(configuration.C.Mail)

	userRepository := persistence.NewUserRepositoryMSSQL(db)
	activationRepository := persistence.NewActivationRepositoryMSSQL(db)
	resetRepository := persistence.NewPasswordResetRepositoryMSSQL(db)
	videoRepository := persistence.NewVideoRepositoryMSSQL(db)
	searchCacheRepository := persistence.NewSearchCacheRepositoryMSSQL(db, configuration.C.Search.CacheTTL())
	playlistRepository := persistence.NewPlaylistRepositoryMSSQL(db)
	tagRepository := persistence.NewTagRepositoryMSSQL(db)
	gifRepository := persistence.NewGifRepositoryMSSQL(db)

	hub := realtime.NewPlaylistHub()

	searchUsecase := usecase.NewSearchUseCase(searchCacheRepository, videoRepository, youtubeClient).
		WithUpsertConcurrency(configuration.C.Search.UpsertConcurrency)
	authUsecase := usecase.NewAuthUsecase(userRepository, activationRepository, resetRepository, mail, usecase.AuthSettings{
		SecretKey:   app.SecretKey,
		FrontendURL: app.FrontendURL,
	})
	playlistUsecase := usecase.NewPlaylistUsecase(playlistRepository, videoRepository, gifRepository, tagRepository).
		WithBroadcaster(hub)
	adminUsecase := usecase.NewAdminUsecase(searchUsecase, playlistRepository, tagRepository, app.SystemUserID)
	catalogUsecase := usecase.NewCatalogUsecase(tagRepository, gifRepository, videoRepository)

	router := server.InitiateRouter(server.Handlers{
		Auth:       httpHandler.NewAuthHandler(authUsecase, app.IsProduction() || app.TLSEnabled),
		Activation: httpHandler.NewActivationHandler(authUsecase),
		Playlist:   httpHandler.NewPlaylistHandler(playlistUsecase, hub),
		Catalog:    httpHandler.NewCatalogHandler(catalogUsecase),
		Search:     httpHandler.NewSearchHandler(searchUsecase, configuration.C.Search.Timeout()),
		Admin:      httpHandler.NewAdminHandler(adminUsecase),
		Health:     httpHandler.NewHealthHandler(db),
	}, userRepository, server.Options{
		SecretKey:      app.SecretKey,
		AllowedOrigins: app.AllowedOrigins,
		TrustedProxies: app.TrustedProxies,
		SearchLimiter:  searchLimiter,
		RetryAfter:     rl.Window(),
	})

	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
	httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer.RegisterOnShutdown(hub.Close)
	g.Go(func() error {
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Graceful shutdown incomplete")
	}

	return g.Wait()
}
