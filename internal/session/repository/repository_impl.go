package repository

import (
	"context"
	"errors"
	"time"

	"github.com/telestore/telestore/internal/session/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Find(ctx context.Context, db *gorm.DB, token string, now time.Time) (*domain.Session, error) {
	var sess domain.Session
	err := db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, sess *domain.Session) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
		}).
		Create(sess).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&domain.Session{}).Error
}

func (r *repo) DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	tx := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Session{})
	return tx.RowsAffected, tx.Error
}
