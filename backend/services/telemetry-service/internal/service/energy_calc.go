package service

import (
	"math"

	"github.com/shopspring/decimal"
)

var wattsPerKilowatt = decimal.NewFromInt(1000)

// RoundHalfAwayFromZero rounds x to places decimals the way SQL ROUND does on
// numeric values. x is taken at its shortest decimal form, so 1.005 rounds to 1.01.
func RoundHalfAwayFromZero(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(int32(places)).InexactFloat64()
}

// KilowattHours converts a sum of watt samples into the kWh figure shown on the
// dashboard. Every sample counts as one unit of energy regardless of the
// sampling interval.
func KilowattHours(sumWatts float64) float64 {
	if math.IsNaN(sumWatts) || math.IsInf(sumWatts, 0) {
		return sumWatts
	}
	return decimal.NewFromFloat(sumWatts).Div(wattsPerKilowatt).Round(2).InexactFloat64()
}

// NetKilowattHours is KilowattHours of produced minus consumed, with the
// subtraction done in decimal so it cannot nudge a half-cent result down.
func NetKilowattHours(producedWatts, consumedWatts float64) float64 {
	if math.IsNaN(producedWatts-consumedWatts) || math.IsInf(producedWatts-consumedWatts, 0) {
		return producedWatts - consumedWatts
	}
	net := decimal.NewFromFloat(producedWatts).Sub(decimal.NewFromFloat(consumedWatts))
	return net.Div(wattsPerKilowatt).Round(2).InexactFloat64()
}
