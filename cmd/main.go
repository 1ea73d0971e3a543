package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	authconfig "consultancy-portal/internal/auth/config"
	"consultancy-portal/internal/di"
	portalhttp "consultancy-portal/internal/portal/adapter/http"
	portalconfig "consultancy-portal/internal/portal/config"
	"consultancy-portal/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string `env:"SERVER_HOST" envDefault:"localhost"`
	Port           string `env:"SERVER_PORT" envDefault:"3000"`
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
	BodyLimitBytes int    `env:"BODY_LIMIT_BYTES" envDefault:"12582912"`
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}
	logCfg := logger.Config{}
	if err := env.Parse(&logCfg); err != nil {
		log.Fatalf("Failed to load logging configuration: %v", err)
	}
	appLogger := logger.New(logCfg)

	authCfg, err := authconfig.LoadConfig()
	if err != nil {
		appLogger.Fatalf("Failed to load auth configuration: %v", err)
	}
	portalCfg, err := portalconfig.LoadConfig()
	if err != nil {
		appLogger.Fatalf("Failed to load portal configuration: %v", err)
	}
	appLogger.Info("Application configuration loaded successfully")

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := container.InitializeConnections(ctx, portalCfg); err != nil {
		appLogger.Fatalf("Failed to open connections: %v", err)
	}
	if err := container.InitializeAuth(ctx, authCfg); err != nil {
		appLogger.Fatalf("Failed to initialize auth module: %v", err)
	}
	if err := container.InitializePortal(ctx); err != nil {
		appLogger.Fatalf("Failed to initialize portal module: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Consultancy Portal API v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    serverCfg.BodyLimitBytes,
		ErrorHandler: portalhttp.ErrorHandler(appLogger),
	})

	authModule := container.GetAuthModule()
	portalModule := container.GetPortalModule()
	middleware := authModule.GetMiddleware()

	app.Use(recover.New())
	app.Use(middleware.RequestID(), middleware.RequestContext(), middleware.SecurityHeaders())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     serverCfg.AllowedOrigins,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + portalhttp.SessionHeader,
		ExposeHeaders:    portalhttp.SessionHeader + ", " + fiber.HeaderXRequestID,
		AllowCredentials: serverCfg.AllowedOrigins != "*",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "UNHEALTHY",
				"error":   err.Error(),
				"message": "One or more services are unhealthy",
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"message":   "Consultancy Portal API is running",
			"timestamp": time.Now().UTC(),
			"backends": fiber.Map{
				"store":   portalCfg.StoreBackend,
				"cursors": portalCfg.CursorBackend,
			},
		})
	})

	authModule.RegisterRoutes(app)
	portalModule.RegisterRoutes(app, middleware)
	appLogger.Info("Auth and portal routes registered")

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed to start: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
