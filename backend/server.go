// Package backend serves the PackForge HTTP API.
package backend

import (
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/packforge/backend/handlers"
	"github.com/ellavondegurechaff/packforge/backend/middleware"
	"github.com/ellavondegurechaff/packforge/backend/utils"
	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewServer builds the fiber app with every route mounted.
func NewServer(webApp *handlers.WebApp) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "PackForge API",
		ServerHeader: "PackForge",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    1 << 20,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(cors.New(cors.Config{
		AllowOrigins: webApp.Config.GetWebConfig().AllowOrigins,
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.LoggingMiddleware())

	setupRoutes(app, webApp)
	return app
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	api := app.Group("/api", middleware.AuthRequired(webApp))

	limit := webApp.Config.GetWebConfig().RateLimit
	if limit <= 0 {
		limit = config.GamePlayRateLimit
	}
	api.Post("/games/play", middleware.RateLimit(limit, config.GamePlayRateWindow), handlers.PlayGame(webApp))

	packs := api.Group("/packs")
	packs.Get("/", handlers.ListPacks(webApp))
	packs.Post("/open/:packId", handlers.OpenPack(webApp))
	packs.Post("/classic/:packId/purchase", handlers.PurchaseClassicPack(webApp))

	vault := api.Group("/vault")
	vault.Get("/", handlers.ListVault(webApp))
	vault.Post("/refund", handlers.RefundCards(webApp))
	vault.Post("/ship", handlers.ShipCards(webApp))

	credits := api.Group("/credits")
	credits.Get("/", handlers.GetCredits(webApp))
	credits.Post("/deduct", handlers.DeductCredits(webApp))

	api.Get("/feed", handlers.GetFeed(webApp))

	admin := api.Group("/admin", middleware.AdminRequired())
	admin.Get("/pull-rates/:packType", handlers.GetPullRates(webApp))
	admin.Put("/pull-rates/:packType", middleware.AuditLogMiddleware("set_pull_rates"), handlers.SetPullRates(webApp))
	admin.Get("/pull-rates/:packType/audit", handlers.AuditPullRates(webApp))
	admin.Put("/users/:id/credits", middleware.AuditLogMiddleware("set_user_credits"), handlers.SetUserCredits(webApp))

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return utils.SendNotFound(c, "The requested endpoint does not exist")
	})
}
