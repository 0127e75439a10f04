package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceRates() map[int]float64 {
	return map[int]float64{0: 6, 1: 5, 2: 4, 3: 3, 4: 2}
}

func TestFee_GracePeriodIsFree(t *testing.T) {
	calc := New(referenceRates(), 30)

	for floor := 0; floor <= 4; floor++ {
		for _, minutes := range []float64{0, 1, 15, 29, 30} {
			fee, err := calc.Fee(minutes, floor)
			require.NoError(t, err)
			assert.Equal(t, 0.0, fee, "floor %d, %v minutes", floor, minutes)
		}
	}
}

func TestFee_ReferenceTableAt90Minutes(t *testing.T) {
	calc := New(referenceRates(), 30)

	expected := map[int]float64{0: 6.0, 1: 5.0, 2: 4.0, 3: 3.0, 4: 2.0}
	for floor, fee := range expected {
		got, err := calc.Fee(90, floor)
		require.NoError(t, err)
		assert.Equal(t, fee, got, "floor %d", floor)
	}
}

func TestFee_RoundsToTwoDecimals(t *testing.T) {
	calc := New(referenceRates(), 30)

	// (31-30)/60 * 5 = 0.08333... -> 0.08
	fee, err := calc.Fee(31, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.08, fee)

	// (55-30)/60 * 6 = 2.5
	fee, err = calc.Fee(55, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, fee)
}

func TestFee_NegativeMinutes(t *testing.T) {
	calc := New(referenceRates(), 30)

	_, err := calc.Fee(-1, 0)
	assert.ErrorIs(t, err, ErrNegativeMinutes)
}

func TestFee_FractionalMinutes(t *testing.T) {
	calc := New(referenceRates(), 30)

	_, err := calc.Fee(90.5, 0)
	assert.ErrorIs(t, err, ErrFractionalMinutes)
}

func TestFee_UnknownFloor(t *testing.T) {
	calc := New(referenceRates(), 30)

	_, err := calc.Fee(90, 5)
	assert.ErrorIs(t, err, ErrUnknownFloor)
}

func TestFee_MonotonicInMinutes(t *testing.T) {
	calc := New(referenceRates(), 30)

	prev := 0.0
	for minutes := 0.0; minutes <= 360; minutes++ {
		fee, err := calc.Fee(minutes, 2)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fee, prev)
		prev = fee
	}
}

func TestHasFloor(t *testing.T) {
	calc := New(referenceRates(), 30)

	assert.True(t, calc.HasFloor(0))
	assert.True(t, calc.HasFloor(4))
	assert.False(t, calc.HasFloor(5))
	assert.False(t, calc.HasFloor(-1))
}
