package service

import (
	"math"

	"github.com/fsdevblog/groph-delivery/internal/domain"
)

const earthRadiusKM = 6371

// haversineKM returns the great-circle distance between two points in
// kilometers.
func haversineKM(from, to domain.Coordinates) float64 {
	dLat := degToRad(to.Latitude - from.Latitude)
	dLng := degToRad(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(from.Latitude))*math.Cos(degToRad(to.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
