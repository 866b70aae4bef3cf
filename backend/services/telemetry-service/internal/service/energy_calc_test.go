package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 1.23, RoundHalfAwayFromZero(1.234567, 2))
	assert.Equal(t, 0.13, RoundHalfAwayFromZero(0.125, 2))
	assert.Equal(t, -0.13, RoundHalfAwayFromZero(-0.125, 2))
	assert.Equal(t, 3.0, RoundHalfAwayFromZero(2.5, 0))
	assert.Equal(t, -3.0, RoundHalfAwayFromZero(-2.5, 0))
}

func TestRoundHalfAwayFromZeroDecimalHalves(t *testing.T) {
	// None of these halves is exact in binary floating point.
	assert.Equal(t, 1.01, RoundHalfAwayFromZero(1.005, 2))
	assert.Equal(t, -1.01, RoundHalfAwayFromZero(-1.005, 2))
	assert.Equal(t, 2.68, RoundHalfAwayFromZero(2.675, 2))
	assert.Equal(t, 1.02, RoundHalfAwayFromZero(1.015, 2))
	assert.Equal(t, 0.29, RoundHalfAwayFromZero(0.285, 2))
}

func TestRoundHalfAwayFromZeroPassesNonFinite(t *testing.T) {
	assert.True(t, math.IsNaN(RoundHalfAwayFromZero(math.NaN(), 2)))
	assert.True(t, math.IsInf(RoundHalfAwayFromZero(math.Inf(1), 2), 1))
}

func TestKilowattHours(t *testing.T) {
	assert.Equal(t, 1.23, KilowattHours(1234.567))
	assert.Equal(t, 2.23, KilowattHours(2227.1))
	assert.Equal(t, -0.56, KilowattHours(-564))
	assert.Equal(t, 0.0, KilowattHours(0))
}

func TestKilowattHoursHalfCentSums(t *testing.T) {
	assert.Equal(t, 1.01, KilowattHours(1005))
	assert.Equal(t, -1.01, KilowattHours(-1005))
	assert.Equal(t, 2.68, KilowattHours(2675))
	assert.Equal(t, 0.01, KilowattHours(5))
}

func TestNetKilowattHours(t *testing.T) {
	assert.Equal(t, 1.01, NetKilowattHours(1005.1, 0.1))
	assert.Equal(t, -1.01, NetKilowattHours(0.1, 1005.1))
	assert.Equal(t, 1.1, NetKilowattHours(1500, 400))
	assert.Equal(t, 0.0, NetKilowattHours(0, 0))
}
