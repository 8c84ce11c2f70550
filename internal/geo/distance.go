package geo

import (
	"fmt"
	"math"
)

// earthRadiusKm is the mean Earth radius used for great-circle math.
const earthRadiusKm = 6371

// walkMinutesPerKm assumes a leisurely sightseeing pace.
const walkMinutesPerKm = 12

// Distance returns the great-circle distance in kilometers between two
// coordinates, computed with the haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// FormatDistance renders a distance for display: meters below one kilometer
// ("500m"), one decimal in kilometers otherwise ("2.3km").
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

// WalkTime renders the estimated walking time for a distance in kilometers.
func WalkTime(km float64) string {
	return fmt.Sprintf("%d分", int(math.Ceil(km*walkMinutesPerKm)))
}
