package repository

import (
	"context"

	"github.com/telestore/telestore/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// ClaimProcessed relies on the guid primary key: the first insert wins, every
// later attempt affects zero rows. This is the persistent side of the
// at-most-once delivery gate.
func (r *repo) ClaimProcessed(ctx context.Context, db *gorm.DB, p *domain.Payment) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO payments (guid, user_id, tariff_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		p.GUID, p.UserID, p.TariffID, p.Amount, p.CreatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) IsProcessed(ctx context.Context, db *gorm.DB, guid string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM payments WHERE guid = ?`, guid,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
