package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-intake/internal/ai"
	httptransport "github.com/spec-kit/ticket-intake/internal/api/http"
	"github.com/spec-kit/ticket-intake/internal/api/http/handlers"
	"github.com/spec-kit/ticket-intake/internal/config"
	"github.com/spec-kit/ticket-intake/internal/dedup"
	"github.com/spec-kit/ticket-intake/internal/events"
	"github.com/spec-kit/ticket-intake/internal/mailer"
	"github.com/spec-kit/ticket-intake/internal/observability"
	"github.com/spec-kit/ticket-intake/internal/persistence"
	"github.com/spec-kit/ticket-intake/internal/repository"
	"github.com/spec-kit/ticket-intake/internal/service"
	"github.com/spec-kit/ticket-intake/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	threadRepo := repository.NewThreadRepository(pool)
	faqRepo := repository.NewFAQRepository(pool)

	embedder := ai.NewCachedEmbedder(
		ai.NewEmbeddingClient(cfg.AI.EmbeddingURL, cfg.AI.EmbeddingTimeout(), logger),
		redis.Client,
		cfg.AI.EmbeddingCacheTTL(),
		logger,
	)
	classifier := ai.NewClassifierClient(cfg.AI.ClassifierURL, cfg.AI.ClassifierTimeout(), logger)
	enricher := ai.NewEnrichmentClient(cfg.AI.EnrichmentURL, cfg.AI.EnrichmentTimeout(), logger)
	writer := ai.NewResponseGenerator(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel, logger)

	mail := mailer.NewWebhookMailer(
		cfg.Notification.EmailWebhookURL,
		cfg.Notification.EmailFrom,
		cfg.Notification.SendTimeout(),
		logger,
	)

	dispatcher := events.NewInMemoryDispatcher()
	resolver := dedup.NewResolver(ticketRepo, logger)
	faqService := service.NewFAQService(faqRepo, embedder, logger)

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		TicketRepo: ticketRepo,
		ThreadRepo: threadRepo,
		Resolver:   resolver,
		Classifier: classifier,
		Matcher:    faqService,
		Enricher:   enricher,
		Writer:     writer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		ThreadRepo: threadRepo,
		Dispatcher: dispatcher,
		Mailer:     mail,
		Logger:     logger,
	})

	notificationService := service.NewNotificationService(dispatcher, mail, logger)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Intake:  handlers.NewIntakeHandler(intakeService, metrics),
		Tickets: handlers.NewTicketsHandler(ticketService),
		FAQs:    handlers.NewFAQHandler(faqService),
		Metrics: metrics,
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
