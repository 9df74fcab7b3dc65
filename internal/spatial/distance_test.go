package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/cdr-indicators/internal/models"
)

func TestGreatCircleDistance(t *testing.T) {
	a := models.LatLng{Lat: 0, Lng: 0}
	assert.Zero(t, GreatCircleDistance(a, a))

	// one degree of longitude on the equator
	b := models.LatLng{Lat: 0, Lng: 1}
	assert.InDelta(t, EarthRadiusKm*math.Pi/180, GreatCircleDistance(a, b), 1e-6)

	// symmetric
	c := models.LatLng{Lat: 42.36, Lng: -71.06}
	d := models.LatLng{Lat: 40.71, Lng: -74.01}
	assert.InDelta(t, GreatCircleDistance(c, d), GreatCircleDistance(d, c), 1e-9)
	assert.InDelta(t, 306, GreatCircleDistance(c, d), 2)
}

func TestBarycenter(t *testing.T) {
	points := []models.LatLng{{Lat: 0, Lng: 0}, {Lat: 2, Lng: 4}}

	center, ok := Barycenter(points, nil)
	require.True(t, ok)
	assert.Equal(t, models.LatLng{Lat: 1, Lng: 2}, center)

	center, ok = Barycenter(points, []float64{3, 1})
	require.True(t, ok)
	assert.Equal(t, models.LatLng{Lat: 0.5, Lng: 1}, center)

	_, ok = Barycenter(nil, nil)
	assert.False(t, ok)
}
