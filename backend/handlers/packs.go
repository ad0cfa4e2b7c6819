package handlers

import (
	webmodels "github.com/ellavondegurechaff/packforge/backend/models"
	"github.com/ellavondegurechaff/packforge/backend/utils"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/gofiber/fiber/v2"
)

// OpenPack handles POST /api/packs/open/:packId.
func OpenPack(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		packID := c.Params("packId")
		if !utils.ValidateID(packID) {
			return utils.SendDomainError(c, economy.ErrPackNotFoundOrAlreadyOpened)
		}

		res, err := webApp.App.Opener.OpenUserPack(c.UserContext(), packID, session(c).UserID)
		if err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendJSON(c, fiber.StatusOK, webmodels.NewPackOpenResponse(res))
	}
}

// PurchaseClassicPack handles POST /api/packs/classic/:packId/purchase.
func PurchaseClassicPack(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		packID := c.Params("packId")
		if !utils.ValidateID(packID) {
			return utils.SendDomainError(c, economy.ErrPackNotFound)
		}

		res, err := webApp.App.Opener.PurchaseAndOpenClassicPack(c.UserContext(), packID, session(c).UserID)
		if err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendJSON(c, fiber.StatusOK, webmodels.NewPackOpenResponse(res))
	}
}

// ListPacks handles GET /api/packs.
func ListPacks(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ups, err := webApp.App.Opener.ListUnopened(c.UserContext(), session(c).UserID)
		if err != nil {
			return utils.SendDomainError(c, err)
		}
		return utils.SendSuccess(c, webmodels.NewUserPackDTOs(ups), "")
	}
}
