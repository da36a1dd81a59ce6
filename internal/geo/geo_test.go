package geo

import (
	"math"
	"testing"
)

func TestPointValid(t *testing.T) {
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{Lat: 0, Lng: 0}, true},
		{Point{Lat: 90, Lng: 180}, true},
		{Point{Lat: -90, Lng: -180}, true},
		{Point{Lat: 90.1, Lng: 0}, false},
		{Point{Lat: 0, Lng: -180.5}, false},
	}
	for _, tc := range cases {
		if got := tc.p.Valid(); got != tc.want {
			t.Errorf("Valid(%+v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestDistanceKM_SamePointIsZero(t *testing.T) {
	p := Point{Lat: 32.7157, Lng: -117.1611}
	if d := DistanceKM(p, p); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}

func TestDistanceKM_KnownPair(t *testing.T) {
	// San Diego to Los Angeles, roughly 179 km.
	sd := Point{Lat: 32.7157, Lng: -117.1611}
	la := Point{Lat: 34.0522, Lng: -118.2437}
	d := DistanceKM(sd, la)
	if d < 170 || d > 190 {
		t.Errorf("SD-LA distance = %f km, expected ~179", d)
	}
}

func TestDestination_RoundTripsDistance(t *testing.T) {
	start := Point{Lat: 19.4326, Lng: -99.1332}
	for _, dist := range []float64{0.5, 5, 50} {
		for _, heading := range []float64{0, 45, 90, 180, 270, 359} {
			dest := Destination(start, heading, dist)
			got := DistanceKM(start, dest)
			if math.Abs(got-dist) > 0.01 {
				t.Errorf("Destination(%f deg, %f km) landed %f km away", heading, dist, got)
			}
		}
	}
}

func TestBearing_DueNorth(t *testing.T) {
	a := Point{Lat: 10, Lng: 20}
	b := Point{Lat: 11, Lng: 20}
	if br := Bearing(a, b); math.Abs(br) > 0.01 && math.Abs(br-360) > 0.01 {
		t.Errorf("bearing due north = %f, want 0", br)
	}
}

func TestBearing_Range(t *testing.T) {
	a := Point{Lat: 48.2, Lng: 16.4}
	points := []Point{
		{Lat: 48.3, Lng: 16.5},
		{Lat: 48.1, Lng: 16.3},
		{Lat: 48.2, Lng: 17},
		{Lat: 47, Lng: 16.4},
	}
	for _, b := range points {
		br := Bearing(a, b)
		if br < 0 || br >= 360 {
			t.Errorf("Bearing(%+v) = %f, want [0,360)", b, br)
		}
	}
}

func TestLookupArea(t *testing.T) {
	area, err := LookupArea("san_diego")
	if err != nil {
		t.Fatalf("LookupArea(san_diego): %v", err)
	}
	if math.Abs(area.Center.Lat-32.7157) > 0.001 {
		t.Errorf("unexpected san_diego center: %+v", area.Center)
	}
	if _, err := LookupArea("atlantis"); err == nil {
		t.Errorf("expected error for unknown area")
	}
}
