package geo

import (
	"math"
	"testing"
)

func TestDistanceKm_SamePoint(t *testing.T) {
	got := DistanceKm(28.7041, 77.1025, 28.7041, 77.1025)
	if got != 0 {
		t.Errorf("DistanceKm(same point) = %v, want 0", got)
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Connaught Place to IGI Airport (~16.5 km).
	got := DistanceKm(28.6315, 77.2167, 28.5562, 77.0889)
	if got < 14.0 || got > 20.0 {
		t.Errorf("DistanceKm(Connaught, IGI) = %.2f km, want between 14 and 20", got)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := DistanceKm(28.6315, 77.2167, 28.5562, 77.0889)
	b := DistanceKm(28.5562, 77.0889, 28.6315, 77.2167)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("DistanceKm not symmetric: %v vs %v", a, b)
	}
}

func TestDistanceM(t *testing.T) {
	km := DistanceKm(0, 0, 0.001, 0)
	m := DistanceM(0, 0, 0.001, 0)
	if math.Abs(m-km*1000) > 0.01 {
		t.Errorf("DistanceM = %v, want DistanceKm*1000 = %v", m, km*1000)
	}
	// 0.001 degrees of latitude is roughly 111 meters.
	if m < 100 || m > 125 {
		t.Errorf("DistanceM(0.001 deg lat) = %.1f m, want ~111 m", m)
	}
}
