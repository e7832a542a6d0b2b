package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/medscan/medscan-golang/internal/auth"
	"github.com/medscan/medscan-golang/internal/config"
	"github.com/medscan/medscan-golang/internal/database"
	"github.com/medscan/medscan-golang/internal/events"
	"github.com/medscan/medscan-golang/internal/handlers"
	"github.com/medscan/medscan-golang/internal/routes"
	"github.com/medscan/medscan-golang/internal/scan"
	"github.com/medscan/medscan-golang/internal/service"
	"github.com/medscan/medscan-golang/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()

	db, err := database.OpenDB(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	st := store.NewMySQLStore(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	// The event publisher is optional; without AMQP_URL order events stay
	// local (notifications only).
	var publisher service.OrderEventPublisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.OrderQueueName)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	// Scanning needs at least one analyzer key; with neither set the scan
	// endpoints report the feature as unavailable.
	var scanner *scan.Service
	if cfg.GeminiAPIKey != "" || cfg.OCRAPIKey != "" {
		scanner, err = scan.NewService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.OCRAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize scan service: %v", err)
		}
		defer scanner.Close()
	} else {
		log.Println("WARNING: GEMINI_API_KEY and OCR_API_KEY are unset; prescription scanning disabled.")
	}

	notifications := service.NewNotificationService(st)
	app := &handlers.Handlers{
		Tokens:        tokens,
		Users:         st.Users,
		Catalog:       service.NewCatalogService(st),
		Cart:          service.NewCartService(st),
		Orders:        service.NewOrderService(st, notifications, publisher),
		Notifications: notifications,
		Scanner:       scanner,
	}

	router := routes.SetupRouter(app, tokens)

	log.Printf("Starting MedScan API server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
