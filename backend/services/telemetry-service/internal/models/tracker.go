package models

import "time"

// TimeOfDayLayout formats TrackerSample.Waktu.
const TimeOfDayLayout = "15:04:05"

// TrackerSample is the latest servo position and LDR light levels reported by
// the tracking unit.
type TrackerSample struct {
	ServoX float64 `json:"servoX"`
	ServoY float64 `json:"servoY"`
	LDR1   float64 `json:"ldr1"`
	LDR2   float64 `json:"ldr2"`
	LDR3   float64 `json:"ldr3"`
	LDR4   float64 `json:"ldr4"`
	Waktu  string  `json:"waktu"`
}

// DefaultTrackerSample is the state before any unit has reported.
func DefaultTrackerSample(now time.Time) TrackerSample {
	return TrackerSample{Waktu: now.Format(TimeOfDayLayout)}
}

// TrackerInput is what the unit posts. Missing fields are 0.
type TrackerInput struct {
	ServoX Number `json:"servoX"`
	ServoY Number `json:"servoY"`
	LDR1   Number `json:"ldr1"`
	LDR2   Number `json:"ldr2"`
	LDR3   Number `json:"ldr3"`
	LDR4   Number `json:"ldr4"`
}

// Sample converts the input into an unstamped sample; the hub sets Waktu.
func (in TrackerInput) Sample() TrackerSample {
	return TrackerSample{
		ServoX: float64(in.ServoX),
		ServoY: float64(in.ServoY),
		LDR1:   float64(in.LDR1),
		LDR2:   float64(in.LDR2),
		LDR3:   float64(in.LDR3),
		LDR4:   float64(in.LDR4),
	}
}
