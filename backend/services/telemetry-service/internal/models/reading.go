package models

import "time"

// Reading is one stored panel or beban sample.
type Reading struct {
	Voltage    float64   `db:"voltage" json:"voltage"`
	Current    float64   `db:"current" json:"current"`
	Power      float64   `db:"power" json:"power"`
	RecordedAt time.Time `db:"created_at" json:"recorded_at"`
}

// ReadingPair is a panel and a beban reading submitted together.
type ReadingPair struct {
	Panel *Reading
	Beban *Reading
}

// ReadingInput is the wire shape sensor clients post for one side of the pair.
type ReadingInput struct {
	Voltage Number `json:"voltage"`
	Current Number `json:"current"`
	Power   Number `json:"power"`
}

// Reading converts the input into an unstamped Reading.
func (in *ReadingInput) Reading() *Reading {
	if in == nil {
		return nil
	}
	return &Reading{
		Voltage: float64(in.Voltage),
		Current: float64(in.Current),
		Power:   float64(in.Power),
	}
}

// ReadingPairInput is the POST /api/data body.
type ReadingPairInput struct {
	Panel *ReadingInput `json:"panel"`
	Beban *ReadingInput `json:"beban"`
}

// Pair converts the body into a ReadingPair, keeping absent halves nil.
func (in ReadingPairInput) Pair() ReadingPair {
	return ReadingPair{Panel: in.Panel.Reading(), Beban: in.Beban.Reading()}
}

// Electrical is the reading without its timestamp, as served by /api/data/latest.
type Electrical struct {
	Voltage float64 `json:"voltage"`
	Current float64 `json:"current"`
	Power   float64 `json:"power"`
}

// LatestPair is the most recent panel row next to the most recent beban row.
type LatestPair struct {
	Panel Electrical `json:"panel"`
	Beban Electrical `json:"beban"`
}

// DailyTotal is the raw per-day power sum a store returns.
type DailyTotal struct {
	Date     string
	SumPower float64
}

// PowerStats summarises power over a time window.
type PowerStats struct {
	Count int64
	Sum   float64
	Max   float64
	Avg   float64
}
