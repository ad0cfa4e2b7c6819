package economy

import (
	"errors"
	"fmt"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
)

type Kind uint8

const (
	KindSystem Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExhausted:
		return "exhausted"
	}
	return "system"
}

// Error is a domain failure. Two errors match under errors.Is when their codes match.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// With returns a copy of e carrying cause.
func (e *Error) With(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrInvalidAmount               = newError(KindValidation, "INVALID_AMOUNT", "Amount must be positive with at most two decimals")
	ErrInsufficientCredits         = newError(KindValidation, "INSUFFICIENT_CREDITS", "Insufficient credits")
	ErrUserNotFound                = newError(KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrPackNotFoundOrAlreadyOpened = newError(KindNotFound, "PACK_NOT_FOUND_OR_OPENED", "Pack not found or already opened")
	ErrPackNotFound                = newError(KindNotFound, "PACK_NOT_FOUND", "Pack not found")
	ErrPackInactive                = newError(KindConflict, "PACK_INACTIVE", "Pack is not available")
	ErrPackSoldOut                 = newError(KindExhausted, "PACK_SOLD_OUT", "Pack is sold out")
	ErrPackTypeNotFound            = newError(KindNotFound, "PACK_TYPE_NOT_FOUND", "No active pack for this pack type")
	ErrNoCardsInTier               = newError(KindExhausted, "NO_CARDS_IN_TIER", "No cards available in tier")
	ErrNoCardsInPrizePool          = newError(KindExhausted, "NO_CARDS_IN_PRIZE_POOL", "Not enough cards left in prize pool")
	ErrNoPullRates                 = newError(KindExhausted, "NO_PULL_RATES", "No pull rates configured for pack type")
	ErrMalformedRateTable          = newError(KindValidation, "MALFORMED_RATE_TABLE", "Pull rates must sum to 100")
	ErrHoldingNotRefundable        = newError(KindConflict, "HOLDING_NOT_REFUNDABLE", "Card not found, already refunded or shipped")
	ErrEmptySelection              = newError(KindValidation, "EMPTY_SELECTION", "No cards selected")
	ErrUnknownGameType             = newError(KindValidation, "UNKNOWN_GAME_TYPE", "Unknown game type")
	ErrInvalidGameResult           = newError(KindValidation, "INVALID_GAME_RESULT", "Invalid game result")
	ErrInvalidBet                  = newError(KindValidation, "INVALID_BET", "Invalid bet amount")
	ErrRefundQueueFull             = newError(KindExhausted, "REFUND_QUEUE_FULL", "Refund queue is full, try again later")
)

// NoCardsInTier reports an empty tier; it matches ErrNoCardsInTier.
func NoCardsInTier(tier models.Tier) *Error {
	return &Error{
		Kind:    KindExhausted,
		Code:    ErrNoCardsInTier.Code,
		Message: fmt.Sprintf("No cards available in tier %s", tier),
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindSystem.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
