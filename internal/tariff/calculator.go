package tariff

import (
	"errors"
	"math"

	"github.com/smallbiznis/carpark/internal/config"
	"go.uber.org/fx"
)

var (
	ErrFractionalMinutes = errors.New("invalid_minutes_fractional")
	ErrNegativeMinutes   = errors.New("invalid_minutes_negative")
	ErrUnknownFloor      = errors.New("invalid_floor")
)

// Calculator maps parked time to a fee. Each floor carries its own hourly
// rate; the first GraceMinutes of every session are free.
type Calculator struct {
	rates        map[int]float64
	graceMinutes float64
}

// New builds a calculator over an immutable floor -> hourly rate table.
func New(rates map[int]float64, graceMinutes int) *Calculator {
	copied := make(map[int]float64, len(rates))
	for floor, rate := range rates {
		copied[floor] = rate
	}
	return &Calculator{rates: copied, graceMinutes: float64(graceMinutes)}
}

// NewFromConfig builds the calculator from application configuration.
func NewFromConfig(cfg config.Config) *Calculator {
	return New(cfg.Lot.Rates(), cfg.Lot.GraceMinutes)
}

// Fee returns the amount owed for a stay of the given number of whole
// minutes on the given floor, rounded to 2 decimal places. Minutes is taken
// as float64 so callers passing a fractional value get a distinct error
// instead of a silently truncated fee.
func (c *Calculator) Fee(minutes float64, floor int) (float64, error) {
	if minutes != math.Trunc(minutes) {
		return 0, ErrFractionalMinutes
	}
	if minutes < 0 {
		return 0, ErrNegativeMinutes
	}
	rate, ok := c.rates[floor]
	if !ok {
		return 0, ErrUnknownFloor
	}

	if minutes <= c.graceMinutes {
		return 0, nil
	}

	fee := ((minutes - c.graceMinutes) / 60) * rate
	return math.Round(fee*100) / 100, nil
}

// HasFloor reports whether the floor exists in the rate table.
func (c *Calculator) HasFloor(floor int) bool {
	_, ok := c.rates[floor]
	return ok
}

// Module wires the fee calculator.
var Module = fx.Module("tariff",
	fx.Provide(NewFromConfig),
)
