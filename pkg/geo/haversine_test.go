package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		wantMeters float64
		tolerance  float64
	}{
		{
			name: "same point",
			lat1: 48.8566, lon1: 2.3522,
			lat2: 48.8566, lon2: 2.3522,
			wantMeters: 0,
			tolerance:  0.01,
		},
		{
			name: "Paris to London",
			lat1: 48.8566, lon1: 2.3522,
			lat2: 51.5074, lon2: -0.1278,
			wantMeters: 343_500,
			tolerance:  2_000,
		},
		{
			name: "Dublin city block",
			lat1: 53.3498, lon1: -6.2603,
			lat2: 53.3508, lon2: -6.2603,
			wantMeters: 111.2,
			tolerance:  0.5,
		},
		{
			name: "one degree of longitude on the equator",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 1,
			wantMeters: 111_195,
			tolerance:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantMeters) > tt.tolerance {
				t.Errorf("Haversine() = %.2f, want %.2f ± %.2f", got, tt.wantMeters, tt.tolerance)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(48.8566, 2.3522, 48.8606, 2.3376)
	b := Haversine(48.8606, 2.3376, 48.8566, 2.3522)
	if a != b {
		t.Errorf("Haversine not symmetric: %v vs %v", a, b)
	}
}

func TestRoundCentimeters(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{5, 5},
		{108.274, 108.27},
		{108.276, 108.28},
		{7.2, 7.2},
		{0.004, 0},
	}
	for _, tt := range tests {
		if got := RoundCentimeters(tt.in); got != tt.want {
			t.Errorf("RoundCentimeters(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkHaversine(b *testing.B) {
	for b.Loop() {
		Haversine(48.8566, 2.3522, 48.8606, 2.3376)
	}
}
