package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fsdevblog/groph-delivery/internal/domain"
)

func TestHaversineKM(t *testing.T) {
	paris := domain.Coordinates{Latitude: 48.8566, Longitude: 2.3522}
	london := domain.Coordinates{Latitude: 51.5074, Longitude: -0.1278}

	assert.InDelta(t, 343.5, haversineKM(paris, london), 1.5)
	assert.Zero(t, haversineKM(paris, paris))

	tunis := domain.Coordinates{Latitude: 36.8065, Longitude: 10.1815}
	nearby := domain.Coordinates{Latitude: 36.8188, Longitude: 10.1658}
	assert.InDelta(t, 1.95, haversineKM(tunis, nearby), 0.2)

	// symmetric
	assert.InDelta(t, haversineKM(paris, london), haversineKM(london, paris), 1e-9)
}
