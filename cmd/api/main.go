package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/atendehq/helpdesk/internal/api/http"
	"github.com/atendehq/helpdesk/internal/api/http/handlers"
	"github.com/atendehq/helpdesk/internal/auth"
	"github.com/atendehq/helpdesk/internal/cache"
	"github.com/atendehq/helpdesk/internal/config"
	"github.com/atendehq/helpdesk/internal/events"
	"github.com/atendehq/helpdesk/internal/observability"
	"github.com/atendehq/helpdesk/internal/persistence"
	"github.com/atendehq/helpdesk/internal/repository"
	"github.com/atendehq/helpdesk/internal/service"
	"github.com/atendehq/helpdesk/internal/storage"
	"github.com/atendehq/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	blobs, err := storage.NewFilesystemStore(cfg.Storage.FilesystemRoot)
	if err != nil {
		logger.Fatal("failed to init blob storage", zap.Error(err))
	}
	signer := storage.NewURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL())

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	logRepo := repository.NewTicketLogRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	knowledgeRepo := repository.NewKnowledgeRepository(pool)

	txManager := persistence.NewTxManager(pool)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	var ticketCache *cache.TicketCache
	if cfg.Cache.Enabled {
		ticketCache = cache.NewTicketCache(redis.Client, cfg.Cache.TTL(), logger)
	}

	notificationWorker := worker.NewNotificationWorker(notificationRepo, logger)
	notificationWorker.Register(dispatcher)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	authService := service.NewAuthService(userRepo, tokenManager, cfg.Auth, logger)
	userService := service.NewUserService(userRepo, cfg.Auth, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		LogRepo:        logRepo,
		UserRepo:       userRepo,
		Tx:             txManager,
		Dispatcher:     dispatcher,
		Cache:          ticketCache,
		Logger:         logger,
	})
	commentService := service.NewCommentService(commentRepo, ticketRepo, logRepo, txManager, dispatcher, ticketCache, logger)
	attachmentService := service.NewAttachmentService(attachmentRepo, ticketRepo, logRepo, blobs, signer, txManager, dispatcher, cfg.Upload, logger)
	notificationService := service.NewNotificationService(notificationRepo)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, logger)
	reportService := service.NewReportService(ticketRepo, ticketCache)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxSizeBytes) + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Attachments:    handlers.NewAttachmentsHandler(attachmentService),
		Users:          handlers.NewUsersHandler(userService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Knowledge:      handlers.NewKnowledgeHandler(knowledgeService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
