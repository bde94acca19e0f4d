package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"spatiality/internal/config"
	"spatiality/internal/handlers"
	"spatiality/internal/models"
	"spatiality/internal/repositories"
	"spatiality/internal/services"
	"spatiality/pkg/rabbitmq"
)

const version = "1.0.0"

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Database (GORM) ---
	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Event publishing (optional) ---
	// With no RABBITMQ_URL configured the service runs without events.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
		publisher = mqClient
	}

	// --- Repositories / Services / Handlers ---
	userRepo := repositories.NewGORMUserRepository(db)
	userService := services.NewUserService(userRepo, publisher)
	userHandler := handlers.NewUserHandler(userService)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: cfg.Debug,
	})
	app.Use(logger.New()) // Request logger

	// --- Health Check Endpoint ---
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Spatiality Backend API",
			"status":  "running",
			"version": version,
		})
	})

	// --- API Routes ---
	api := app.Group("/api")
	userHandler.RegisterRoutes(api)

	// --- Start HTTP Server ---
	addr := cfg.Addr()
	log.Printf("Starting server on %s", addr)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// openDatabase opens a GORM connection; PostgreSQL DSNs are recognized by
// their shape, anything else is treated as a SQLite path.
func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
