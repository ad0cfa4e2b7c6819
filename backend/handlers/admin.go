package handlers

import (
	"log/slog"

	webmodels "github.com/ellavondegurechaff/packforge/backend/models"
	"github.com/ellavondegurechaff/packforge/backend/utils"
	"github.com/gofiber/fiber/v2"
)

// GetPullRates handles GET /api/admin/pull-rates/:packType.
func GetPullRates(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rates, err := webApp.App.Rates.Get(c.UserContext(), c.Params("packType"))
		if err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendSuccess(c, webmodels.PullRatesRequest{Rates: rates}, "")
	}
}

// SetPullRates handles PUT /api/admin/pull-rates/:packType.
func SetPullRates(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		packType := c.Params("packType")
		var req webmodels.PullRatesRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidatePullRates(packType, &req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		if err := webApp.App.Rates.Set(c.UserContext(), packType, req.Rates); err != nil {
			return utils.SendDomainError(c, err)
		}
		slog.Info("Pull rates replaced by admin",
			slog.String("pack_type", packType),
			slog.String("admin_id", session(c).UserID),
		)
		return utils.SendSuccess(c, req, "Pull rates updated")
	}
}

// AuditPullRates handles GET /api/admin/pull-rates/:packType/audit?draws=.
func AuditPullRates(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		draws, ok := utils.ParseAuditDraws(c.Query("draws"))
		if !ok {
			return utils.SendBadRequest(c, "Invalid draws", nil)
		}

		report, err := webApp.App.Rates.Audit(c.UserContext(), c.Params("packType"), draws)
		if err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendSuccess(c, report, "")
	}
}

// SetUserCredits handles PUT /api/admin/users/:id/credits.
func SetUserCredits(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if !utils.ValidateID(userID) {
			return utils.SendNotFound(c, "User not found")
		}
		var req webmodels.SetCreditsRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		user, err := webApp.App.Ledger.SetCredits(c.UserContext(), userID, req.Amount, req.Description)
		if err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendSuccess(c, webmodels.NewCreditsDTO(user, nil), "Credits updated")
	}
}
