package utils

import (
	"regexp"
	"strconv"

	"github.com/ellavondegurechaff/packforge/backend/models"
	"github.com/ellavondegurechaff/packforge/packforge/config"
	dbmodels "github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
	"github.com/google/uuid"
)

var (
	// MaxSelection bounds the number of holdings in one refund or shipment.
	MaxSelection = 200

	// ValidPackTypeRegex validates pack type labels
	ValidPackTypeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)
)

// ValidateID reports whether id is a UUID.
func ValidateID(id string) bool {
	return uuid.Validate(id) == nil
}

// ValidateCardSelection validates a refund or ship request
func ValidateCardSelection(req *models.CardSelectionRequest) []models.FieldValidationError {
	var errors []models.FieldValidationError

	if len(req.CardIDs) == 0 {
		errors = append(errors, models.FieldValidationError{Field: "cardIds", Message: "At least one card is required"})
	} else if len(req.CardIDs) > MaxSelection {
		errors = append(errors, models.FieldValidationError{Field: "cardIds", Message: "Too many cards selected"})
	}
	for i, id := range req.CardIDs {
		if !ValidateID(id) {
			errors = append(errors, models.FieldValidationError{
				Field:   "cardIds[" + strconv.Itoa(i) + "]",
				Message: "Invalid card id",
			})
		}
	}

	return errors
}

// ValidateDeductRequest validates a credit deduction
func ValidateDeductRequest(req *models.DeductRequest) []models.FieldValidationError {
	var errors []models.FieldValidationError

	if err := economy.ValidateAmount(req.Amount); err != nil {
		errors = append(errors, models.FieldValidationError{Field: "amount", Message: "Amount must be positive with at most two decimals"})
	}
	if len(req.Reason) > 255 {
		errors = append(errors, models.FieldValidationError{Field: "reason", Message: "Reason must be less than 256 characters"})
	}

	return errors
}

// ValidatePullRates validates an admin pull-rate table
func ValidatePullRates(packType string, req *models.PullRatesRequest) []models.FieldValidationError {
	var errors []models.FieldValidationError

	if !ValidPackTypeRegex.MatchString(packType) {
		errors = append(errors, models.FieldValidationError{Field: "packType", Message: "Invalid pack type"})
	}
	if len(req.Rates) == 0 {
		errors = append(errors, models.FieldValidationError{Field: "rates", Message: "At least one rate is required"})
		return errors
	}

	seen := make(map[dbmodels.Tier]bool, len(req.Rates))
	for i, r := range req.Rates {
		field := "rates[" + strconv.Itoa(i) + "]"
		if !r.Tier.Valid() {
			errors = append(errors, models.FieldValidationError{Field: field + ".tier", Message: "Unknown tier"})
		} else if seen[r.Tier] {
			errors = append(errors, models.FieldValidationError{Field: field + ".tier", Message: "Duplicate tier"})
		}
		seen[r.Tier] = true
		if r.Probability < 0 {
			errors = append(errors, models.FieldValidationError{Field: field + ".probability", Message: "Probability must not be negative"})
		}
	}
	if sum := odds.Sum(req.Rates); sum < 100-config.RateSumTolerance || sum > 100+config.RateSumTolerance {
		errors = append(errors, models.FieldValidationError{
			Field:   "rates",
			Message: "Probabilities must sum to 100, got " + strconv.FormatFloat(sum, 'f', 2, 64),
		})
	}

	return errors
}

// ParseAuditDraws reads the draws query parameter of an audit request.
func ParseAuditDraws(raw string) (int, bool) {
	if raw == "" {
		return config.DefaultAuditDraws, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > config.MaxAuditDraws {
		return 0, false
	}
	return n, true
}
