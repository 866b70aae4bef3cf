package models

// BatteryHealthPlaceholder is reported as battery_health. There is no battery
// telemetry source yet, so the value is fixed.
const BatteryHealthPlaceholder = 80

// DailyEnergyPoint is the energy produced on one calendar day.
type DailyEnergyPoint struct {
	Date      string  `json:"date"`
	EnergyKWh float64 `json:"energy_kWh"`
}

// DashboardSnapshot is computed per request and never stored.
// The zero value marshals to {} and means "no telemetry yet".
type DashboardSnapshot struct {
	PowerProduce  *float64 `json:"power_produce,omitempty"`
	PowerLoad     *float64 `json:"power_load,omitempty"`
	EnergyToday   *float64 `json:"energy_today,omitempty"`
	PeakPower     *float64 `json:"peak_power,omitempty"`
	AvgLoad       *float64 `json:"avg_load,omitempty"`
	NetEnergy     *float64 `json:"net_energy,omitempty"`
	BatteryHealth *int     `json:"battery_health,omitempty"`
}

// Empty reports whether the snapshot carries no data.
func (s DashboardSnapshot) Empty() bool {
	return s.PowerProduce == nil && s.PowerLoad == nil
}
