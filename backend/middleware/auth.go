package middleware

import (
	"errors"
	"log/slog"

	"github.com/ellavondegurechaff/packforge/backend/handlers"
	webservices "github.com/ellavondegurechaff/packforge/backend/services"
	"github.com/ellavondegurechaff/packforge/backend/utils"
	"github.com/ellavondegurechaff/packforge/packforge/logger"
	"github.com/ellavondegurechaff/packforge/packforge/services"
	"github.com/gofiber/fiber/v2"
)

// AuthRequired middleware ensures the request carries a valid bearer token
// and that the caller has a user row.
func AuthRequired(webApp *handlers.WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := webservices.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		session, err := webApp.Tokens.Parse(token)
		if err != nil {
			slog.Debug("Auth required: invalid token", slog.String("error", err.Error()))
			if errors.Is(err, webservices.ErrExpiredToken) {
				return utils.SendUnauthorized(c, "Token expired")
			}
			return utils.SendUnauthorized(c, "Invalid token")
		}

		err = webApp.App.Accounts.Ensure(c.UserContext(), services.Account{
			UserID:   session.UserID,
			Username: session.Username,
			Email:    session.Email,
		})
		if err != nil {
			logger.LogError("Failed to provision account", err, slog.String("user_id", session.UserID))
			return utils.SendInternalServerError(c, "Failed to load account")
		}

		c.Locals("user", session)
		return c.Next()
	}
}

// AdminRequired middleware ensures the user has admin privileges
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := utils.ExtractUserSession(c)
		if !ok {
			slog.Warn("Admin required: no user in context")
			return utils.SendForbidden(c, "Access denied")
		}

		if !session.IsAdmin {
			slog.Warn("Admin required: user lacks admin privileges",
				slog.String("user_id", session.UserID),
				slog.String("username", session.Username))
			return utils.SendForbidden(c, "Admin access required")
		}

		return c.Next()
	}
}
