package presence

import (
	"context"
	"math"

	"facegate/pkg/requestcontext"
)

const earthRadiusMeters = 6371000

// GeoAttestor accepts requests whose reported coordinates fall within a
// radius of the office location.
type GeoAttestor struct {
	officeLat    float64
	officeLon    float64
	radiusMeters float64
}

// NewGeo creates a geofence attestor around the office location.
func NewGeo(lat, lon, radiusMeters float64) *GeoAttestor {
	return &GeoAttestor{officeLat: lat, officeLon: lon, radiusMeters: radiusMeters}
}

func (a *GeoAttestor) IsPresentOnSite(ctx context.Context) (bool, error) {
	coords, ok := requestcontext.ClientCoordinates(ctx)
	if !ok {
		return false, nil
	}
	return haversineMeters(a.officeLat, a.officeLon, coords.Latitude, coords.Longitude) <= a.radiusMeters, nil
}

// haversineMeters is the great-circle distance between two points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
