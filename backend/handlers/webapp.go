package handlers

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/packforge/backend/config"
	webmodels "github.com/ellavondegurechaff/packforge/backend/models"
	webservices "github.com/ellavondegurechaff/packforge/backend/services"
	"github.com/ellavondegurechaff/packforge/backend/utils"
	"github.com/ellavondegurechaff/packforge/packforge"
	"github.com/gofiber/fiber/v2"
)

// WebApp represents the web application with all dependencies
type WebApp struct {
	Config  *config.WebAppConfig
	App     *packforge.App
	Tokens  *webservices.TokenService
	Version string
	Commit  string
}

func NewWebApp(app *packforge.App) (*WebApp, error) {
	cfg := config.NewWebAppConfig(&app.Cfg)
	tokens, err := webservices.NewTokenService(cfg)
	if err != nil {
		return nil, err
	}
	return &WebApp{
		Config:  cfg,
		App:     app,
		Tokens:  tokens,
		Version: app.Version,
		Commit:  app.Commit,
	}, nil
}

// session returns the caller set by the auth middleware.
func session(c *fiber.Ctx) *webmodels.UserSession {
	s, _ := utils.ExtractUserSession(c)
	return s
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.Version, webApp.Commit)

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := webApp.App.Store.Ping(ctx); err != nil {
			health.AddComponent("database", webmodels.StatusUnhealthy, err.Error())
		} else {
			health.AddComponent("database", webmodels.StatusHealthy, "")
		}

		status := fiber.StatusOK
		if health.Status != webmodels.StatusHealthy {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(webmodels.NewSuccessResponse(health, "Health check"))
	}
}
