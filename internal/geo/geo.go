// Great-circle math on a spherical Earth (R = 6371 km).
package geo

import "math"

const earthRadiusKM = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Valid reports whether the point lies inside the WGS coordinate bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Area is a named operating area: a center point and a containment radius.
type Area struct {
	Name     string  `yaml:"name"`
	Center   Point   `yaml:"center"`
	RadiusKM float64 `yaml:"radius_km"`
}

// DistanceKM returns the haversine distance between two points in kilometers.
func DistanceKM(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c
}

// Destination moves p along headingDeg by distanceKM using the standard
// forward-azimuth solution.
func Destination(p Point, headingDeg, distanceKM float64) Point {
	lat := p.Lat * math.Pi / 180
	lng := p.Lng * math.Pi / 180
	heading := headingDeg * math.Pi / 180
	d := distanceKM / earthRadiusKM

	newLat := math.Asin(math.Sin(lat)*math.Cos(d) +
		math.Cos(lat)*math.Sin(d)*math.Cos(heading))
	newLng := lng + math.Atan2(
		math.Sin(heading)*math.Sin(d)*math.Cos(lat),
		math.Cos(d)-math.Sin(lat)*math.Sin(newLat))

	return Point{Lat: newLat * 180 / math.Pi, Lng: newLng * 180 / math.Pi}
}

// Bearing returns the initial bearing from a to b in degrees [0, 360).
func Bearing(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}
