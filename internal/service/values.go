package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "energytracker/internal/errors"
)

// Decimal precision of persisted values.
const (
	KWhPlaces     int32 = 3
	PricePlaces   int32 = 4
	CostPlaces    int32 = 4
	PercentPlaces int32 = 2
)

const maxNameLength = 100

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time

func positiveDecimal(field string, d decimal.Decimal, places int32) (decimal.Decimal, error) {
	rounded := d.Round(places)
	if !rounded.IsPositive() {
		return decimal.Zero, apperrors.InvalidField(field, "must be a positive number")
	}
	return rounded, nil
}

func requiredName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.InvalidField("name", "is required")
	}
	if len([]rune(name)) > maxNameLength {
		return "", apperrors.InvalidField("name", "must be at most 100 characters")
	}
	return name, nil
}
