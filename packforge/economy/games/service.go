package games

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/economy/ledger"
	"github.com/ellavondegurechaff/packforge/packforge/economy/vault"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Config struct {
	// TrustClientResults accepts plinko and wheel outcomes reported by the client.
	TrustClientResults bool    `toml:"trust_client_results"`
	MaxBet             float64 `toml:"max_bet"`
}

type PlayRequest struct {
	GameType     string
	BetAmount    decimal.Decimal
	PlinkoResult string
	WheelResult  string
}

// PlayResult identifies the reward: the awarded user pack for pack games,
// the vaulted card otherwise.
type PlayResult struct {
	SessionID string
	GameType  string
	CardID    string
	Tier      string
}

type Service struct {
	store  interfaces.Store
	ledger *ledger.Ledger
	mapper *Mapper
	cfg    Config
	maxBet decimal.Decimal
	now    func() time.Time
}

func NewService(store interfaces.Store, l *ledger.Ledger, mapper *Mapper, cfg Config) *Service {
	if cfg.MaxBet <= 0 {
		cfg.MaxBet = config.DefaultMaxBet
	}
	if mapper == nil {
		mapper = NewMapper(nil)
	}
	return &Service{
		store:  store,
		ledger: l,
		mapper: mapper,
		cfg:    cfg,
		maxBet: decimal.NewFromFloat(cfg.MaxBet),
		now:    time.Now,
	}
}

// Play charges the bet and grants the reward in one unit of work.
func (s *Service) Play(ctx context.Context, userID string, req PlayRequest) (*PlayResult, error) {
	if !KnownGame(req.GameType) {
		return nil, economy.ErrUnknownGameType
	}
	if err := economy.ValidateAmount(req.BetAmount); err != nil || req.BetAmount.GreaterThan(s.maxBet) {
		return nil, economy.ErrInvalidBet
	}

	var res *PlayResult
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return economy.ErrUserNotFound.With(err)
			}
			return err
		}
		ok, err := s.ledger.Deduct(ctx, tx, userID, req.BetAmount, models.TxGamePlay, fmt.Sprintf("Played %s", req.GameType))
		if err != nil {
			return err
		}
		if !ok {
			return economy.ErrInsufficientCredits
		}

		res = &PlayResult{SessionID: uuid.NewString(), GameType: req.GameType}
		if AwardsPack(req.GameType) {
			client := req.PlinkoResult
			if req.GameType == GameWheel {
				client = req.WheelResult
			}
			packType, err := s.mapper.PackType(req.GameType, client, s.cfg.TrustClientResults)
			if err != nil {
				return err
			}
			up, err := s.AwardPack(ctx, tx, userID, packType, req.GameType)
			if err != nil {
				return err
			}
			res.CardID, res.Tier = up.ID, packType
		} else {
			card, err := s.drawCard(ctx, tx, userID, req.GameType)
			if err != nil {
				return err
			}
			res.CardID, res.Tier = card.ID, string(card.Tier)
		}

		return tx.InsertGameSession(ctx, &models.GameSession{
			ID:        res.SessionID,
			UserID:    userID,
			GameType:  req.GameType,
			BetAmount: req.BetAmount,
			Result: map[string]any{
				"cardId":   res.CardID,
				"tier":     res.Tier,
				"gameType": res.GameType,
			},
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Game played",
		slog.String("user_id", userID),
		slog.String("game_type", req.GameType),
		slog.String("bet", req.BetAmount.StringFixed(2)),
		slog.String("tier", res.Tier),
	)
	return res, nil
}

// AwardPack grants an unopened pack of packType, preferring a regular pack
// template over a mystery pack.
func (s *Service) AwardPack(ctx context.Context, tx interfaces.Tx, userID, packType, gameType string) (*models.UserPack, error) {
	var packID string
	pack, err := tx.ActivePackByType(ctx, packType)
	switch {
	case err == nil:
		packID = pack.ID
	case errors.Is(err, interfaces.ErrNotFound):
		mp, err := tx.ActiveMysteryPackByType(ctx, packType)
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, economy.ErrPackTypeNotFound.With(err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load mystery pack: %w", err)
		}
		packID = mp.ID
	default:
		return nil, fmt.Errorf("failed to load pack: %w", err)
	}

	up := &models.UserPack{
		ID:         uuid.NewString(),
		UserID:     userID,
		PackID:     packID,
		Tier:       packType,
		EarnedFrom: gameType,
		EarnedAt:   s.now(),
	}
	if err := tx.InsertUserPack(ctx, up); err != nil {
		return nil, fmt.Errorf("failed to award pack: %w", err)
	}
	return up, nil
}

// drawCard awards one in-stock card of a simulated tier, falling back to tier D.
func (s *Service) drawCard(ctx context.Context, tx interfaces.Tx, userID, gameType string) (*models.InventoryCard, error) {
	tier, err := s.mapper.LegacyTier()
	if err != nil {
		return nil, err
	}

	candidates, err := inStock(ctx, tx, tier)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 && tier != models.TierD {
		tier = models.TierD
		if candidates, err = inStock(ctx, tx, tier); err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return nil, economy.NoCardsInTier(tier)
	}

	card := candidates[s.mapper.selector.PickIndex(len(candidates))]
	ok, err := tx.DecrementCardStock(ctx, card.ID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}
	if !ok {
		return nil, economy.NoCardsInTier(tier)
	}

	now := s.now()
	if err := vault.Deposit(ctx, tx, userID, card, 1, now); err != nil {
		return nil, err
	}
	if card.Tier.IsHit() {
		err := tx.InsertFeedEntry(ctx, &models.GlobalFeed{
			ID:        uuid.NewString(),
			UserID:    userID,
			CardID:    card.ID,
			Tier:      card.Tier,
			GameType:  gameType,
			CreatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to post feed entry: %w", err)
		}
	}
	return card, nil
}

func inStock(ctx context.Context, tx interfaces.Tx, tier models.Tier) ([]*models.InventoryCard, error) {
	cards, err := tx.CardsByTier(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s cards: %w", tier, err)
	}
	out := cards[:0]
	for _, c := range cards {
		if c.Stock > 0 {
			out = append(out, c)
		}
	}
	return out, nil
}
