package handlers

import (
	webmodels "github.com/ellavondegurechaff/packforge/backend/models"
	"github.com/ellavondegurechaff/packforge/backend/utils"
	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/gofiber/fiber/v2"
)

// DeductCredits handles POST /api/credits/deduct.
func DeductCredits(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.DeductRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateDeductRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		if err := webApp.App.Ledger.DeductCredits(c.UserContext(), session(c).UserID, req.Amount, req.Reason); err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendJSON(c, fiber.StatusOK, webmodels.DeductResponse{
			APIResponse:     webmodels.Envelope("Credits deducted"),
			CreditsDeducted: req.Amount,
		})
	}
}

// GetCredits handles GET /api/credits.
func GetCredits(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := webApp.App.Ledger.Statement(c.UserContext(), session(c).UserID)
		if err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendSuccess(c, webmodels.NewCreditsDTO(st.User, st.Transactions), "")
	}
}

// GetFeed handles GET /api/feed.
func GetFeed(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := webApp.App.Feed.Recent(c.UserContext(), c.QueryInt("limit", config.FeedLimit))
		if err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendSuccess(c, webmodels.NewFeedDTOs(entries), "")
	}
}
