package spatial

import (
	"github.com/golang/geo/s2"
	"github.com/jengzang/cdr-indicators/internal/models"
)

// GreatCircleDistance calculates the great-circle distance between two points in kilometers
func GreatCircleDistance(a, b models.LatLng) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// Barycenter returns the weighted arithmetic mean of coordinates.
// ok is false when the total weight is zero.
func Barycenter(points []models.LatLng, weights []float64) (models.LatLng, bool) {
	var lat, lng, total float64
	for i, p := range points {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		lat += p.Lat * w
		lng += p.Lng * w
		total += w
	}
	if total == 0 {
		return models.LatLng{}, false
	}
	return models.LatLng{Lat: lat / total, Lng: lng / total}, true
}

// EarthRadiusKm is the Earth's mean radius in kilometers
const EarthRadiusKm = 6371.0
