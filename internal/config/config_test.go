package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 5, cfg.Lot.Floors)
	assert.Equal(t, 50, cfg.Lot.SpotsPerFloor)
	assert.Equal(t, []float64{6, 5, 4, 3, 2}, cfg.Lot.HourlyRates)
	assert.Equal(t, 30, cfg.Lot.GraceMinutes)
	assert.Equal(t, 15, cfg.Lot.PaymentWindowMinutes)
	assert.Equal(t, "PL", cfg.Plate.EnforcedCountry)
}

func TestLoadFloorsFollowRateTable(t *testing.T) {
	t.Setenv("LOT_FLOORS", "7")

	cfg := Load()
	assert.Equal(t, len(cfg.Lot.HourlyRates), cfg.Lot.Floors)
	assert.Equal(t, 5, cfg.Lot.Floors)
}

func TestLoadFloorsFollowCustomRateTable(t *testing.T) {
	t.Setenv("LOT_FLOORS", "2")
	t.Setenv("LOT_FLOOR_RATES", "4,3,2")

	cfg := Load()
	assert.Equal(t, 3, cfg.Lot.Floors)
	assert.Equal(t, []float64{4, 3, 2}, cfg.Lot.HourlyRates)
}

func TestRatesMapsFloorsInOrder(t *testing.T) {
	lot := LotConfig{HourlyRates: []float64{6, 5, 4}}
	assert.Equal(t, map[int]float64{0: 6, 1: 5, 2: 4}, lot.Rates())
}
