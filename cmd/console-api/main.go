package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/coordinator"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/webhook"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/handlers"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/services"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/support-console-be/cmd/console-api/docs"
)

// @title Support Console API
// @version 1.0
// @description Backend for the WhatsApp customer-support console: inbox, labels, status, internal notes
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel)
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("🚀 Starting console-api")

	// Init database
	db, err := database.NewDB(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect database")
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(append(repositories.Models(), &audit.AuditLog{})...); err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to migrate database")
		}
		log.Info().Msg("✅ Database schema up to date")
	}

	// Init repositories
	conversationRepo := repositories.NewConversationRepo(db.GORM)
	noteRepo := newNoteRepo(cfg.NotesBackend, db)

	// Init core services
	auditService := audit.NewService(db.GORM)
	llmService := llm.NewService(&llm.ProviderConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
	exportService := export.NewService()

	// Init inbox services
	inboxService := services.NewInboxService(conversationRepo, auditService)
	noteService := services.NewNoteService(noteRepo, inboxService, auditService)
	replyService := services.NewReplyService(conversationRepo, llmService)
	conversationExport := services.NewExportService(conversationRepo, exportService)

	// Webhook fan-out
	hub := webhook.NewHub()
	hub.Subscribe(inboxService.HandleEvent)
	if cfg.NATSURL != "" {
		relay, err := webhook.ConnectNATSRelay(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ NATS relay disabled")
		} else {
			hub.Subscribe(relay.Relay)
			defer relay.Close()
			log.Info().Str("prefix", cfg.NATSSubjectPrefix).Msg("📡 Relaying webhook events to NATS")
		}
	}

	webhookServer := webhook.NewServer(hub)
	webhookPort := coordinator.ParsePort(cfg.WebhookPort)
	separateListener := fmt.Sprint(webhookPort) != cfg.Port
	if separateListener {
		go func() {
			if err := webhookServer.Start(fmt.Sprintf(":%d", webhookPort)); err != nil {
				log.Error().Err(err).Msg("❌ Webhook listener failed")
			}
		}()
	}

	// Coordinator registration and status polling
	var statusReporter handlers.StatusReporter
	var manager *coordinator.Manager
	if cfg.CoordinatorURL != "" {
		manager = coordinator.NewManager(cfg.CoordinatorURL, cfg.WebhookPort, cfg.StatusPollInterval)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := manager.Register(ctx); err != nil {
			log.Warn().Err(err).Msg("⚠️ Coordinator registration failed")
		}
		cancel()
		if err := manager.StartPolling(); err != nil {
			log.Warn().Err(err).Msg("⚠️ Coordinator polling disabled")
		}
		statusReporter = manager
	}

	// Activity log retention
	if cfg.AuditRetentionDays > 0 {
		retention := cron.New()
		_, err := retention.AddFunc("@daily", func() {
			if _, err := auditService.DeleteOldLogs(context.Background(), cfg.AuditRetentionDays); err != nil {
				log.Error().Err(err).Msg("❌ Audit retention failed")
			}
		})
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Audit retention disabled")
		} else {
			retention.Start()
			defer retention.Stop()
		}
	}

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Support Console API",
	})

	// Middleware
	app.Use(cors.New())

	// Swagger and metrics
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Webhook route, also served by the dedicated listener
	app.Post(webhook.Path, webhookServer.Handle)

	handlers.RegisterRoutes(app, handlers.Handlers{
		Health:       handlers.NewHealthHandler(llmService, statusReporter),
		Conversation: handlers.NewConversationHandler(inboxService, replyService),
		Note:         handlers.NewNoteHandler(noteService),
		Export:       handlers.NewExportHandler(conversationExport),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("✅ console-api running")
		log.Info().Msgf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("❌ API server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("🛑 Shutting down...")

	if manager != nil {
		manager.StopPolling()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := manager.Unregister(ctx); err != nil {
			log.Warn().Err(err).Msg("⚠️ Coordinator unregister failed")
		}
		cancel()
	}
	if separateListener {
		if err := webhookServer.Shutdown(); err != nil {
			log.Warn().Err(err).Msg("⚠️ Webhook listener shutdown failed")
		}
	}
	if err := app.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("⚠️ API shutdown failed")
	}
}

func newNoteRepo(backend string, db *database.DB) repositories.NoteRepo {
	switch backend {
	case "memory":
		log.Info().Msg("📝 Notes stored in memory")
		return repositories.NewMemoryNoteRepo(0)
	case "unimplemented":
		log.Warn().Msg("⚠️ Notes backend is a placeholder, every note call will fail")
		return repositories.NewUnimplementedNoteRepo()
	default:
		return repositories.NewNoteRepo(db.GORM)
	}
}
