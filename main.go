package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"marcha/internal/config"
	"marcha/internal/database"
	"marcha/internal/handlers"
	"marcha/internal/metrics"
	"marcha/internal/middleware"
	"marcha/internal/services"
	"marcha/internal/storage"
	"marcha/pkg/rabbitmq"
)

// App is the wired HTTP application together with the resources it owns.
type App struct {
	Fiber  *fiber.App
	Store  *database.Store
	Broker *rabbitmq.Client // nil when RabbitMQ is not available
}

// Close releases the broker and database connections.
func (a *App) Close() {
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if err := a.Store.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// NewApp connects every backend named by cfg and registers the routes.
func NewApp(cfg *config.Config) (*App, error) {
	// --- Initialize Repositories ---
	store, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}

	disk, err := storage.New(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	// --- Initialize RabbitMQ Client ---
	// The API keeps serving without a broker; events are then only counted.
	var broker *rabbitmq.Client
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		broker, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, product events will not be published: %v", err)
			broker = nil
		} else {
			publisher = broker
		}
	}

	// --- Initialize Services ---
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(store.Users, tokenService)
	productService := services.NewProductService(store.Products, store.Users, disk, publisher)

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService, authService)
	authHandler := handlers.NewAuthHandler(authService)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:   handlers.ServiceName,
		BodyLimit: cfg.UploadMaxBytes,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	app.Use(middleware.Metrics())

	// --- Routes ---
	handlers.RegisterServiceRoutes(app, broker != nil)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	if local, ok := disk.(*storage.LocalDisk); ok {
		app.Static("/uploads", filepath.Join(local.Root(), "uploads"))
	}
	authHandler.RegisterRoutes(app)
	productHandler.RegisterRoutes(app)

	return &App{Fiber: app, Store: store, Broker: broker}, nil
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	// --- Start RabbitMQ Consumer in a Goroutine ---
	if app.Broker != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for product events...")
			if err := app.Broker.ConsumeProductEvents(rabbitmq.HandleProductEvent); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
