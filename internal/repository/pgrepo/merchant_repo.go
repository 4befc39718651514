package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

type MerchantRepository struct {
	db uow.DBTX
}

func NewMerchantRepository(db uow.DBTX) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (m *MerchantRepository) FindByID(ctx context.Context, id int64) (*domain.Merchant, error) {
	var (
		merchant domain.Merchant
		lat, lng *float64
	)
	err := m.db.QueryRow(ctx, `
		SELECT id, user_id, name, address, latitude, longitude
		FROM merchants WHERE id = $1`, id,
	).Scan(&merchant.ID, &merchant.UserID, &merchant.Name, &merchant.Address, &lat, &lng)
	if err != nil {
		return nil, convertErr(err, "finding merchant %d", id)
	}
	merchant.Location = coordsFromNullable(lat, lng)
	return &merchant, nil
}
