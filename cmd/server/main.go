package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"expense-insight/internal/adapters/anomaly"
	"expense-insight/internal/adapters/http/middleware"
	"expense-insight/internal/adapters/http/routes"
	"expense-insight/internal/adapters/mailer"
	"expense-insight/internal/adapters/messaging"
	"expense-insight/internal/adapters/ocr"
	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/config"
	"expense-insight/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	_ "expense-insight/docs" // Swagger docs
)

// @title Expense Insight API
// @version 1.0
// @description Personal expense tracking with anomaly scoring and spending analysis.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed demo data (development only)
	if cfg.IsDev() {
		if err := config.NewSeeder(db, cfg.Seed).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed demo data: %v", err)
		}
	}

	deps, closeDeps := buildDependencies(cfg)
	defer closeDeps()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Expense Insight API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    (cfg.OCR.MaxUploadMB + 1) << 20,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	svc := routes.Setup(app, db, cfg, deps)

	// Start cleanup job for expired reset tokens
	cleanup := services.NewCleanupService(svc.PasswordReset, cfg.Cleanup.Schedule)
	if err := cleanup.Start(); err != nil {
		log.Printf("⚠️ Reset token cleanup disabled: %v", err)
	} else {
		defer cleanup.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Start server
	g.Go(func() error {
		log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
		return app.Listen(":" + cfg.Port)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		log.Println("🛑 Shutting down server...")
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Printf("❌ Server stopped with error: %v", err)
		return
	}
	log.Println("✅ Server stopped gracefully")
}

// buildDependencies creates the outbound collaborators from cfg. Every
// collaborator is optional; unset endpoints fall back to a degraded mode.
func buildDependencies(cfg *config.Config) (routes.Dependencies, func()) {
	var deps routes.Dependencies
	closers := []func(){}

	if cfg.Classifier.BaseURL != "" {
		deps.Classifier = anomaly.NewClient(cfg.Classifier.BaseURL, cfg.Classifier.Timeout)
		log.Printf("✅ Anomaly classifier: %s", cfg.Classifier.BaseURL)
	} else {
		log.Println("⚠️ CLASSIFIER_URL not set, every expense is stored as Normal")
	}

	if cfg.OCR.URL != "" {
		deps.Extractor = ocr.NewClient(cfg.OCR.URL, cfg.OCR.Timeout)
		log.Printf("✅ OCR service: %s", cfg.OCR.URL)
	} else {
		log.Println("⚠️ OCR_URL not set, bill uploads are disabled")
	}

	deps.Mailer = resetMailer(cfg)

	deps.Publisher = messaging.NopPublisher{}
	if cfg.AMQP.URL != "" {
		publisher, err := messaging.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Printf("⚠️ Anomaly events disabled: %v", err)
		} else {
			deps.Publisher = publisher
			closers = append(closers, func() {
				if err := publisher.Close(); err != nil {
					log.Printf("❌ Error closing AMQP publisher: %v", err)
				}
			})
			log.Printf("✅ Publishing anomaly events to exchange %s", cfg.AMQP.Exchange)
		}
	}

	return deps, func() {
		for _, c := range closers {
			c()
		}
	}
}

// resetMailer picks the reset email transport. Live links are only ever
// logged in dev mode; elsewhere a missing SMTP host disables the emails.
func resetMailer(cfg *config.Config) services.Mailer {
	switch {
	case cfg.Mail.Host != "":
		log.Printf("✅ SMTP mailer: %s:%s", cfg.Mail.Host, cfg.Mail.Port)
		return mailer.NewSMTPMailer(cfg.Mail)
	case cfg.IsDev():
		log.Println("⚠️ SMTP_HOST not set, reset links are written to the log")
		return mailer.LogMailer{}
	default:
		log.Println("⚠️ SMTP_HOST not set, password reset emails are disabled")
		return nil
	}
}
