package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	controller "prizewheel/controllers"
	"prizewheel/middleware"
	"prizewheel/services"
	"prizewheel/ws"
)

// Deps carries the shared collaborators the route groups are built from
type Deps struct {
	DB               *gorm.DB
	Engine           *services.Engine
	Hub              *ws.Hub
	JWTSecret        string
	PlayRequestLimit int
	LimiterStorage   fiber.Storage
}

func requestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	})
}

// SetupPlayRoutes registers the public participant endpoints
func SetupPlayRoutes(app *fiber.App, deps Deps) {
	playController := controller.NewPlayController(deps.Engine)

	play := app.Group("/api/v1/play/:publicID", requestLogger())
	play.Get("/", playController.GetCampaign)

	throttled := play.Group("", middleware.PlayRateLimiter(deps.PlayRequestLimit, deps.LimiterStorage))
	throttled.Post("/check-spin", playController.CheckSpin)
	throttled.Post("/spin", playController.Spin)
	throttled.Post("/claim-prize", playController.ClaimPrize)

	logrus.Info("Play routes initialized successfully")
}

// SetupAPIRoutes registers the operator API behind token verification
func SetupAPIRoutes(app *fiber.App, deps Deps) {
	manager := services.NewCampaignManager(deps.DB, deps.Engine.Ledger)

	campaignController := controller.NewCampaignController(manager)
	liveController := controller.NewCampaignWSController(manager, deps.Hub)
	leadController := controller.NewLeadController(services.NewLeadBook(deps.DB))
	billingController := controller.NewBillingController(deps.DB, deps.Engine.Ledger)
	dashboardController := controller.NewDashboardController(deps.DB)

	api := app.Group("/api/v1", middleware.Protected(deps.DB, deps.JWTSecret), requestLogger())

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetDashboardStats)
	dashboard.Get("/plays", dashboardController.GetPlaysOverTime)
	dashboard.Get("/recent-campaigns", dashboardController.GetRecentCampaigns)

	// Campaign routes
	campaign := api.Group("/campaigns")
	campaign.Post("/", campaignController.CreateCampaign)
	campaign.Get("/", campaignController.GetCampaigns)
	campaign.Get("/:id", campaignController.GetCampaign)
	campaign.Put("/:id", campaignController.UpdateCampaign)
	campaign.Delete("/:id", campaignController.DeleteCampaign)
	campaign.Post("/:id/publish", campaignController.PublishCampaign)
	campaign.Post("/:id/unpublish", campaignController.UnpublishCampaign)
	campaign.Post("/:id/transitions/:action", campaignController.TransitionCampaign)
	campaign.Get("/:id/lifecycle", campaignController.GetCampaignLifecycle)
	campaign.Get("/:id/stats", campaignController.GetCampaignStats)

	// WebSocket route for live plays
	campaign.Get("/:id/live", liveController.Upgrade, websocket.New(liveController.HandleCampaignLiveWS))

	// Lead routes
	lead := api.Group("/leads")
	lead.Get("/", leadController.GetLeads)
	lead.Get("/reference/:reference", leadController.GetLeadByReference)
	lead.Post("/:id/redeem", leadController.RedeemLead)

	// Billing routes
	billing := api.Group("/billing")
	billing.Get("/balance", billingController.GetBalance)
	billing.Get("/plans", billingController.GetPlans)
	billing.Get("/usage", billingController.GetUsage)

	// Admin routes
	admin := api.Group("/admin", middleware.AdminOnly())
	admin.Post("/operators/:id/grant", billingController.GrantCredits)
	admin.Put("/operators/:id/subscription", billingController.UpdateSubscription)

	logrus.Info("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, deps Deps) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// play routes must be registered before the protected /api/v1 group
	SetupPlayRoutes(app, deps)
	SetupAPIRoutes(app, deps)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
