package handlers

import (
	"log/slog"

	webmodels "github.com/ellavondegurechaff/packforge/backend/models"
	"github.com/ellavondegurechaff/packforge/backend/utils"
	"github.com/ellavondegurechaff/packforge/packforge/economy/games"
	"github.com/gofiber/fiber/v2"
)

// PlayGame handles POST /api/games/play.
func PlayGame(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.PlayRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		user := session(c)
		res, err := webApp.App.Games.Play(c.UserContext(), user.UserID, games.PlayRequest{
			GameType:     req.GameType,
			BetAmount:    req.BetAmount,
			PlinkoResult: req.PlinkoResult,
			WheelResult:  req.WheelResult,
		})
		if err != nil {
			slog.Warn("Game play rejected",
				slog.String("user_id", user.UserID),
				slog.String("game_type", req.GameType),
				slog.Any("error", err),
			)
			return utils.SendDomainError(c, err)
		}

		return utils.SendJSON(c, fiber.StatusOK, webmodels.PlayResponse{
			APIResponse: webmodels.Envelope("Game played"),
			Result: webmodels.GameResultDTO{
				CardID:   res.CardID,
				Tier:     res.Tier,
				GameType: res.GameType,
			},
			SessionID: res.SessionID,
		})
	}
}
