// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokenadmin/internal/config"
	"tokenadmin/internal/handlers"
	"tokenadmin/internal/middleware"
	"tokenadmin/internal/repositories"
	"tokenadmin/internal/routes"
	"tokenadmin/internal/services/fees"
	"tokenadmin/internal/services/wizard"
	"tokenadmin/internal/utils/currency"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const version = "1.0.0"

// main initializes and starts the HTTP server.
// It performs the following setup:
// - Loads configuration and fee schedules
// - Initializes database and cache connections
// - Wires services and handlers
// - Starts the HTTP server
func main() {
	config.LoadEnv()

	jwtSecret := config.GetEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	registry, err := loadRegistry()
	if err != nil {
		log.Fatalf("Failed to load fee schedules: %v", err)
	}

	defaultCurrency := currency.Normalize(config.GetEnv("DEFAULT_CURRENCY", currency.DefaultCode))
	if !currency.Supported(defaultCurrency) {
		log.Fatalf("Unsupported DEFAULT_CURRENCY %q", defaultCurrency)
	}
	apiMode, err := fees.ParseConsistencyMode(config.GetEnv("FEE_CONSISTENCY_MODE", string(fees.ConsistencyReference)))
	if err != nil {
		log.Fatalf("Invalid FEE_CONSISTENCY_MODE: %v", err)
	}

	// Initialize databases (PostgreSQL + Redis)
	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer repositories.Close()

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	if err := repositories.CacheService.HealthCheck(context.Background()); err != nil {
		log.Printf("Redis unavailable, drafts are served from the database: %v", err)
	}

	wizardService := wizard.NewService(
		repositories.NewAssetDraftRepository(repositories.DB),
		repositories.CacheService,
		registry,
		wizard.Config{DefaultCurrency: defaultCurrency},
		&wizard.NoopMetricsCollector{},
	)

	app := fiber.New(fiber.Config{
		AppName:      "tokenadmin " + version,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())

	origins, allowCredentials := config.GetCORSEnv("CORS_ORIGINS", []string{"http://localhost:5173"})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,OPTIONS",
		AllowCredentials: allowCredentials,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use("/api", limiter.New(limiter.Config{
		Max:        config.GetIntEnv("RATE_LIMIT_PER_MINUTE", 120),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Fees: handlers.NewFeeHandler(
			registry,
			fees.NewCalculator(defaultCurrency),
			fees.NewValidator(registry, defaultCurrency, fees.WithConsistencyMode(apiMode)),
		),
		Wizard: handlers.NewWizardHandler(wizardService),
		Health: handlers.NewHealthHandler(sqlDB, repositories.CacheService, version),
	}, middleware.NewAuthMiddleware(jwtSecret))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	if err := app.Listen(":" + config.GetEnv("PORT", "3000")); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

// loadRegistry reads FEE_SCHEDULES_PATH when set and the embedded schedules otherwise.
func loadRegistry() (*fees.Registry, error) {
	if path := config.GetEnv("FEE_SCHEDULES_PATH", ""); path != "" {
		log.Printf("Loading fee schedules from %s", path)
		return fees.LoadRegistry(path)
	}
	return fees.DefaultRegistry()
}
