package repository

import (
	"context"
	"strings"

	"github.com/telestore/telestore/internal/promo/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, code string) (*domain.Promocode, error) {
	var p domain.Promocode
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM promocodes WHERE code = ? LIMIT 1`, strings.TrimSpace(code),
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.Code == "" {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) DecrementUse(ctx context.Context, db *gorm.DB, code string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE promocodes SET uses_left = uses_left - 1
		 WHERE code = ? AND uses_left IS NOT NULL AND uses_left > 0`,
		strings.TrimSpace(code),
	).Error
}
