package fees

import (
	"errors"
	"math"

	"github.com/angelmondragon/fooddash-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidDistance is returned for negative distances.
var ErrInvalidDistance = errors.New("distance must be non-negative")

var (
	thousand         = decimal.NewFromInt(1000)
	secondsPerMinute = decimal.NewFromInt(60)
)

// Schedule is a distance-tiered delivery tariff: a flat fee up to BaseDistanceKm
// and StepFee for every started StepMeters beyond it.
type Schedule struct {
	BaseFee        decimal.Decimal
	BaseDistanceKm decimal.Decimal
	StepFee        decimal.Decimal
	StepMeters     decimal.Decimal
}

// DefaultSchedule is 40 flat up to 2 km, then 1 per started 100 m.
func DefaultSchedule() Schedule {
	return Schedule{
		BaseFee:        decimal.NewFromInt(40),
		BaseDistanceKm: decimal.NewFromInt(2),
		StepFee:        decimal.NewFromInt(1),
		StepMeters:     decimal.NewFromInt(100),
	}
}

// ScheduleFromConfig builds a schedule, keeping defaults for unset values.
func ScheduleFromConfig(cfg config.PricingConfig) Schedule {
	s := DefaultSchedule()
	if cfg.BaseFee > 0 {
		s.BaseFee = decimal.NewFromInt(cfg.BaseFee)
	}
	if cfg.BaseDistanceKm > 0 {
		s.BaseDistanceKm = decimal.NewFromInt(cfg.BaseDistanceKm)
	}
	if cfg.StepFee > 0 {
		s.StepFee = decimal.NewFromInt(cfg.StepFee)
	}
	if cfg.StepMeters > 0 {
		s.StepMeters = decimal.NewFromInt(cfg.StepMeters)
	}
	return s
}

// Fee maps a distance in kilometres to the delivery fee.
func (s Schedule) Fee(distanceKm decimal.Decimal) (decimal.Decimal, error) {
	if distanceKm.IsNegative() {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidDistance, "distance must be non-negative")
	}
	excess := distanceKm.Sub(s.BaseDistanceKm)
	if !excess.IsPositive() {
		return s.BaseFee, nil
	}
	steps := excess.Mul(thousand).Div(s.StepMeters).Ceil()
	return s.BaseFee.Add(steps.Mul(s.StepFee)), nil
}

// Fee applies the default schedule.
func Fee(distanceKm decimal.Decimal) (decimal.Decimal, error) {
	return DefaultSchedule().Fee(distanceKm)
}

// MetersToKm converts a provider distance exactly.
func MetersToKm(meters int64) decimal.Decimal {
	return decimal.New(meters, -3)
}

// MinutesFromSeconds rounds a travel duration up to whole minutes.
func MinutesFromSeconds(seconds int64) int {
	if seconds <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(seconds).Div(secondsPerMinute).Ceil().IntPart())
}

// MinutesAtSpeed estimates travel time for distanceKm at a constant speed.
func MinutesAtSpeed(distanceKm decimal.Decimal, speedKPH float64) int {
	if speedKPH <= 0 || math.IsNaN(speedKPH) || !distanceKm.IsPositive() {
		return 0
	}
	hours := distanceKm.Div(decimal.NewFromFloat(speedKPH))
	return int(hours.Mul(secondsPerMinute).Ceil().IntPart())
}
