package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

type CourierLocationRepository struct {
	db uow.DBTX
}

func NewCourierLocationRepository(db uow.DBTX) *CourierLocationRepository {
	return &CourierLocationRepository{db: db}
}

// Upsert stores the courier's latest reported position.
func (c *CourierLocationRepository) Upsert(ctx context.Context, courierID int64, coords domain.Coordinates) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO courier_locations (courier_id, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (courier_id)
		DO UPDATE SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, updated_at = now()`,
		courierID, coords.Latitude, coords.Longitude,
	)
	if err != nil {
		return convertErr(err, "upserting location of courier %d", courierID)
	}
	return nil
}
