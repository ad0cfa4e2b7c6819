package models

import (
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
	"github.com/ellavondegurechaff/packforge/packforge/economy/packs"
	"github.com/shopspring/decimal"
)

// UserSession is the authenticated caller, decoded from the bearer token.
type UserSession struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FieldValidationError represents a field validation error
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Games

type PlayRequest struct {
	GameType     string          `json:"gameType"`
	BetAmount    decimal.Decimal `json:"betAmount"`
	PlinkoResult string          `json:"plinkoResult,omitempty"`
	WheelResult  string          `json:"wheelResult,omitempty"`
}

type GameResultDTO struct {
	CardID   string `json:"cardId"`
	Tier     string `json:"tier"`
	GameType string `json:"gameType"`
}

type PlayResponse struct {
	APIResponse
	Result    GameResultDTO `json:"result"`
	SessionID string        `json:"sessionId"`
}

// Packs

type PackCardDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Tier        string          `json:"tier"`
	ImageURL    string          `json:"imageUrl"`
	MarketValue decimal.Decimal `json:"marketValue"`
	IsHit       bool            `json:"isHit"`
	Position    int             `json:"position"`
}

type PackOpenResponse struct {
	APIResponse
	PackCards       []PackCardDTO    `json:"packCards"`
	HitCardPosition int              `json:"hitCardPosition"`
	PackType        string           `json:"packType"`
	CreditsSpent    *decimal.Decimal `json:"creditsSpent,omitempty"`
	RemainingPacks  *int             `json:"remainingPacks,omitempty"`
}

func NewPackOpenResponse(res packs.Result) *PackOpenResponse {
	cards := res.Cards()
	out := &PackOpenResponse{
		APIResponse:     Envelope("Pack opened"),
		PackCards:       make([]PackCardDTO, 0, len(cards)),
		HitCardPosition: res.HitCardPosition(),
		PackType:        res.PackType(),
	}
	for _, c := range cards {
		out.PackCards = append(out.PackCards, PackCardDTO{
			ID:          c.ID,
			Name:        c.Name,
			Tier:        string(c.Tier),
			ImageURL:    c.ImageURL,
			MarketValue: c.MarketValue,
			IsHit:       c.IsHit,
			Position:    c.Position,
		})
	}
	if classic, ok := res.(*packs.ClassicPackResult); ok {
		spent := classic.CreditsSpent
		out.CreditsSpent = &spent
		out.RemainingPacks = classic.RemainingPacks
	}
	return out
}

type UserPackDTO struct {
	ID         string    `json:"id"`
	PackID     string    `json:"packId"`
	Tier       string    `json:"tier"`
	EarnedFrom string    `json:"earnedFrom"`
	EarnedAt   time.Time `json:"earnedAt"`
}

func NewUserPackDTOs(ups []*models.UserPack) []UserPackDTO {
	out := make([]UserPackDTO, 0, len(ups))
	for _, up := range ups {
		out = append(out, UserPackDTO{
			ID:         up.ID,
			PackID:     up.PackID,
			Tier:       up.Tier,
			EarnedFrom: up.EarnedFrom,
			EarnedAt:   up.EarnedAt,
		})
	}
	return out
}

// Vault

type CardSelectionRequest struct {
	CardIDs []string `json:"cardIds"`
}

type RefundResponse struct {
	APIResponse
	Queued          bool             `json:"queued"`
	CreditsRefunded *decimal.Decimal `json:"creditsRefunded,omitempty"`
}

type HoldingDTO struct {
	ID        string          `json:"id"`
	CardID    string          `json:"cardId"`
	Name      string          `json:"name"`
	Tier      string          `json:"tier"`
	ImageURL  string          `json:"imageUrl"`
	Quantity  int             `json:"quantity"`
	PullValue decimal.Decimal `json:"pullValue"`
	PulledAt  time.Time       `json:"pulledAt"`
}

func NewHoldingDTOs(holdings []*models.UserCard) []HoldingDTO {
	out := make([]HoldingDTO, 0, len(holdings))
	for _, h := range holdings {
		dto := HoldingDTO{
			ID:        h.ID,
			CardID:    h.CardID,
			Quantity:  h.Quantity,
			PullValue: h.PullValue,
			PulledAt:  h.PulledAt,
		}
		if h.Card != nil {
			dto.Name = h.Card.Name
			dto.Tier = string(h.Card.Tier)
			dto.ImageURL = h.Card.ImageURL
		}
		out = append(out, dto)
	}
	return out
}

// Credits

type DeductRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

type DeductResponse struct {
	APIResponse
	CreditsDeducted decimal.Decimal `json:"creditsDeducted"`
}

type TransactionDTO struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type CreditsDTO struct {
	Credits      decimal.Decimal  `json:"credits"`
	TotalSpent   decimal.Decimal  `json:"totalSpent"`
	Transactions []TransactionDTO `json:"transactions"`
}

func NewCreditsDTO(user *models.User, txs []*models.Transaction) CreditsDTO {
	out := CreditsDTO{
		Credits:      user.Credits,
		TotalSpent:   user.TotalSpent,
		Transactions: make([]TransactionDTO, 0, len(txs)),
	}
	for _, t := range txs {
		out.Transactions = append(out.Transactions, TransactionDTO{
			ID:          t.ID,
			Type:        string(t.Type),
			Amount:      t.Amount,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}

// Feed

type FeedEntryDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CardID    string    `json:"cardId"`
	Tier      string    `json:"tier"`
	GameType  string    `json:"gameType"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewFeedDTOs(entries []*models.GlobalFeed) []FeedEntryDTO {
	out := make([]FeedEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, FeedEntryDTO{
			ID:        e.ID,
			UserID:    e.UserID,
			CardID:    e.CardID,
			Tier:      string(e.Tier),
			GameType:  e.GameType,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// Admin

type PullRatesRequest struct {
	Rates []odds.Rate `json:"rates"`
}

type SetCreditsRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}
