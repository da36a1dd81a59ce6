package geo

import "fmt"

// Areas is the catalog of built-in operating areas. Config may reference
// them by key or define custom ones.
var Areas = map[string]Area{
	"los_angeles":   {Name: "Los Angeles, CA", Center: Point{Lat: 34.0522, Lng: -118.2437}, RadiusKM: 80},
	"san_francisco": {Name: "San Francisco, CA", Center: Point{Lat: 37.7749, Lng: -122.4194}, RadiusKM: 60},
	"san_diego":     {Name: "San Diego, CA", Center: Point{Lat: 32.7157, Lng: -117.1611}, RadiusKM: 50},
	"houston":       {Name: "Houston, TX", Center: Point{Lat: 29.7604, Lng: -95.3698}, RadiusKM: 70},
	"dallas":        {Name: "Dallas, TX", Center: Point{Lat: 32.7767, Lng: -96.7970}, RadiusKM: 60},
	"austin":        {Name: "Austin, TX", Center: Point{Lat: 30.2672, Lng: -97.7431}, RadiusKM: 40},
	"phoenix":       {Name: "Phoenix, AZ", Center: Point{Lat: 33.4484, Lng: -112.0740}, RadiusKM: 60},
	"tucson":        {Name: "Tucson, AZ", Center: Point{Lat: 32.2226, Lng: -110.9747}, RadiusKM: 30},
	"tampico":       {Name: "Tampico, Tamaulipas", Center: Point{Lat: 22.2331, Lng: -97.8610}, RadiusKM: 30},
	"reynosa":       {Name: "Reynosa, Tamaulipas", Center: Point{Lat: 26.0801, Lng: -98.2775}, RadiusKM: 25},
	"tijuana":       {Name: "Tijuana, BC", Center: Point{Lat: 32.5149, Lng: -117.0382}, RadiusKM: 40},
	"mexicali":      {Name: "Mexicali, BC", Center: Point{Lat: 32.6245, Lng: -115.4523}, RadiusKM: 35},
	"monterrey":     {Name: "Monterrey, NL", Center: Point{Lat: 25.6866, Lng: -100.3161}, RadiusKM: 50},
	"guadalupe":     {Name: "Guadalupe, NL", Center: Point{Lat: 25.6767, Lng: -100.2561}, RadiusKM: 15},
}

// LookupArea resolves a catalog key to its Area.
func LookupArea(key string) (Area, error) {
	a, ok := Areas[key]
	if !ok {
		return Area{}, fmt.Errorf("unknown operating area %q", key)
	}
	return a, nil
}
