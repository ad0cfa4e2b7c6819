package handlers

import (
	"log/slog"

	webmodels "github.com/ellavondegurechaff/packforge/backend/models"
	"github.com/ellavondegurechaff/packforge/backend/utils"
	"github.com/gofiber/fiber/v2"
)

// RefundCards handles POST /api/vault/refund. Refunds are queued when the
// refund queue runs asynchronously.
func RefundCards(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CardSelectionRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateCardSelection(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		userID := session(c).UserID
		if webApp.Config.RefundsAsync() {
			if err := webApp.App.Refunds.Enqueue(userID, req.CardIDs); err != nil {
				return utils.SendDomainError(c, err)
			}
			return utils.SendJSON(c, fiber.StatusAccepted, webmodels.RefundResponse{
				APIResponse: webmodels.Envelope("Refund queued"),
				Queued:      true,
			})
		}

		res, err := webApp.App.Vault.Refund(c.UserContext(), userID, req.CardIDs)
		if err != nil {
			slog.Warn("Refund rejected",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
			return utils.SendDomainError(c, err)
		}
		credited := res.Credited
		return utils.SendJSON(c, fiber.StatusOK, webmodels.RefundResponse{
			APIResponse:     webmodels.Envelope("Refund completed"),
			CreditsRefunded: &credited,
		})
	}
}

// ShipCards handles POST /api/vault/ship.
func ShipCards(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CardSelectionRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateCardSelection(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		if err := webApp.App.Vault.Ship(c.UserContext(), session(c).UserID, req.CardIDs); err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendSuccess(c, nil, "Shipment requested")
	}
}

// ListVault handles GET /api/vault?q=.
func ListVault(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		holdings, err := webApp.App.Vault.List(c.UserContext(), session(c).UserID, c.Query("q"))
		if err != nil {
			return utils.SendDomainError(c, err)
		}
		dtos := webmodels.NewHoldingDTOs(holdings)
		if spaces := webApp.App.Spaces; spaces != nil {
			for i := range dtos {
				dtos[i].ImageURL = spaces.CardImageURL(c.UserContext(), dtos[i].ImageURL)
			}
		}
		return utils.SendSuccess(c, dtos, "")
	}
}
