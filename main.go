package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"prizewheel/config"
	"prizewheel/middleware"
	"prizewheel/models"
	"prizewheel/routes"
	"prizewheel/services"
	"prizewheel/utils"
	"prizewheel/worker"
	"prizewheel/ws"
)

func main() {
	issueFor := flag.Uint("issue-token", 0, "print an access token for the given operator id and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of tokens printed by -issue-token")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	if err := config.LoadConfig(ctx); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.SetupLogging(); err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}
	defer config.FlushSentry()

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	if *issueFor != 0 {
		if err := issueToken(uint(*issueFor), *tokenTTL); err != nil {
			logrus.Fatalf("Failed to issue token: %v", err)
		}
		return
	}

	play := config.AppConfig.Play
	publisher := services.NewChannelPublisher(play.EventBuffer)
	hub := ws.NewHub(play.EventBuffer)

	engine := services.NewEngine(config.DB, services.EngineConfig{
		Location:          play.Location(),
		DefaultExpiryDays: play.DefaultRedemptionDays,
		Events:            publisher,
	})

	// Background workers
	go worker.NewPlayEventWorker(publisher.Events(), hub, play.EventsPerSecond).Start(ctx)
	go worker.NewLifecycleWorker(config.DB, hub, time.Minute).Start(ctx)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ProxyHeader: fiber.HeaderXForwardedFor,
	})

	// Add CORS middleware
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = config.AppConfig.Server.CORSOrigins
	app.Use(middleware.CORS(cors))

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		DB:               config.DB,
		Engine:           engine,
		Hub:              hub,
		JWTSecret:        config.AppConfig.JWT.Secret,
		PlayRequestLimit: play.RequestsPerMinute,
		LimiterStorage:   middleware.NewRateLimitStorage(config.AppConfig.Redis),
	})

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	addr := config.AppConfig.Server.GetServerAddr()
	logrus.Infof("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

// issueToken prints a bearer token for an existing operator. Interactive
// sign-in is handled by the account service that shares JWT_SECRET.
func issueToken(operatorID uint, ttl time.Duration) error {
	var operator models.Operator
	if err := config.DB.First(&operator, operatorID).Error; err != nil {
		return fmt.Errorf("operator %d: %w", operatorID, err)
	}
	token, err := utils.GenerateAccessToken(operator.ID, operator.TokenVersion, config.AppConfig.JWT.Secret, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
