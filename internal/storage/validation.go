package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avoronov/snapledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidReceipt = errors.New("invalid receipt")
	ErrInvalidID      = errors.New("identifier must be positive")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateReceipt checks a receipt before it is written. These mirror the
// parser's guarantees so a buggy caller cannot corrupt the store.
func validateReceipt(r *model.Receipt) error {
	if r == nil {
		return fmt.Errorf("%w: receipt", ErrNilParameter)
	}
	if strings.TrimSpace(r.Merchant) == "" {
		return fmt.Errorf("%w: merchant is required", ErrInvalidReceipt)
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidReceipt)
	}
	if r.UserID <= 0 || r.UserID > model.MaxUserID {
		return fmt.Errorf("%w: user id %d out of range", ErrInvalidReceipt, r.UserID)
	}
	if r.TotalAmount < 0 || r.TotalAmount > model.MaxTotalAmount {
		return fmt.Errorf("%w: total %.2f out of range", ErrInvalidReceipt, r.TotalAmount)
	}
	if len(r.Positions) > model.MaxPositions {
		return fmt.Errorf("%w: too many positions (%d)", ErrInvalidReceipt, len(r.Positions))
	}
	for i, p := range r.Positions {
		if strings.TrimSpace(p.Description) == "" {
			return fmt.Errorf("%w: position %d missing description", ErrInvalidReceipt, i)
		}
		if p.Price < 0 || p.Price > model.MaxPositionPrice {
			return fmt.Errorf("%w: position %d price %.2f out of range", ErrInvalidReceipt, i, p.Price)
		}
	}
	for _, refID := range r.ReferenceReceiptIDs {
		if refID <= 0 {
			return fmt.Errorf("%w: reference id %d must be positive", ErrInvalidReceipt, refID)
		}
	}
	return nil
}
