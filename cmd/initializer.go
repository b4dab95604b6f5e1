package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"fakhiuBack/internal/backend"
	"fakhiuBack/internal/config"
	"fakhiuBack/internal/handlers"
	"fakhiuBack/internal/repositories"
	services "fakhiuBack/internal/services"
	"fakhiuBack/internal/session"
	"fakhiuBack/internal/store"
	"fakhiuBack/utils"
)

type application struct {
	cfg    config.Config
	log    *zap.SugaredLogger
	db     *sql.DB
	tokens *utils.Manager

	store    *store.Store
	sessions *session.Registry
	limiter  *submitLimiter
	hub      *sessionHub

	marketService  *services.MarketplaceService
	sessionService *services.SessionService
	requestService *services.RequestService

	marketplaceHandler *handlers.MarketplaceHandler
	sessionHandler     *handlers.SessionHandler
	requestHandler     *handlers.RequestHandler
	bookmarkHandler    *handlers.BookmarkHandler
}

func initializeApp(ctx context.Context, cfg config.Config, db *sql.DB, log *zap.SugaredLogger) (*application, error) {
	// Repositories
	bookmarkRepo := &repositories.BookmarkRepository{DB: db, Driver: cfg.Database.Driver}
	if err := bookmarkRepo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	// Snapshot store
	client := backend.NewClient(&http.Client{Timeout: cfg.BackendTimeout()}, cfg.Backend.BaseURL)
	var cache store.Cache
	if cfg.Redis.Addr != "" {
		rdb, err := store.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		cache = store.NewRedisCache(rdb, cfg.SnapshotTTL())
		log.Infof("snapshot cache: redis at %s", cfg.Redis.Addr)
	}
	snapshots := store.New(client, cache, log)

	// Services
	bookmarkService := &services.BookmarkService{BookmarkRepo: bookmarkRepo}
	marketService := &services.MarketplaceService{Store: snapshots, Bookmarks: bookmarkService, Log: log}
	requestService := &services.RequestService{Backend: client, Log: log}

	uploader, err := utils.NewImageUploader(cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("init image uploader: %w", err)
	}
	if uploader != nil {
		requestService.Images = uploader
	}

	if cfg.Firebase.CredentialsFile != "" {
		fbApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		if err != nil {
			return nil, fmt.Errorf("init firebase: %w", err)
		}
		fcmClient, err := fbApp.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("init messaging: %w", err)
		}
		requestService.Notifier = &services.NotificationService{Client: fcmClient, Log: log}
	}

	var tokens *utils.Manager
	if cfg.Auth.JWTSecret != "" {
		if tokens, err = utils.NewManager(cfg.Auth.JWTSecret); err != nil {
			return nil, err
		}
	}

	registry := session.NewRegistry()
	sessionService := &services.SessionService{Sessions: registry, Market: marketService, Requests: requestService}

	app := &application{
		cfg:    cfg,
		log:    log,
		db:     db,
		tokens: tokens,

		store:    snapshots,
		sessions: registry,
		limiter:  newSubmitLimiter(cfg.Limits.SubmitPerMinute, cfg.Limits.SubmitBurst),

		marketService:  marketService,
		sessionService: sessionService,
		requestService: requestService,

		// Handlers
		marketplaceHandler: &handlers.MarketplaceHandler{Service: marketService},
		sessionHandler:     &handlers.SessionHandler{Service: sessionService},
		requestHandler:     &handlers.RequestHandler{Service: requestService, Market: marketService},
		bookmarkHandler:    &handlers.BookmarkHandler{Service: bookmarkService},
	}
	app.hub = newSessionHub(app)
	snapshots.OnCommit(app.hub.snapshotCommitted)

	return app, nil
}
