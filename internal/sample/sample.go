package sample

import "time"

// Sample is one sensor reading and the instant it arrived.
type Sample struct {
	Value     int   `json:"value" yaml:"value"`
	Timestamp int64 `json:"timestamp_ms" yaml:"timestamp_ms"` // Unix milliseconds
}

// Time returns the arrival instant as a time.Time.
func (s Sample) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Values extracts the sample values as float64 for graphing.
func Values(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s.Value)
	}
	return out
}
