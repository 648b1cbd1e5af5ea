package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Categories(ctx context.Context, db *gorm.DB, parentID *int64) ([]Category, error)
	FindCategory(ctx context.Context, db *gorm.DB, id int64) (*Category, error)
	CreateCategory(ctx context.Context, db *gorm.DB, c *Category) error
	UpdateCategory(ctx context.Context, db *gorm.DB, c *Category) error
	DeleteCategory(ctx context.Context, db *gorm.DB, id int64) error

	// Tariffs lists all tariffs when categoryID is nil; categoryID 0 is the
	// uncategorized sentinel.
	Tariffs(ctx context.Context, db *gorm.DB, categoryID *int64) ([]Tariff, error)
	FindTariff(ctx context.Context, db *gorm.DB, id int64) (*Tariff, error)
	CreateTariff(ctx context.Context, db *gorm.DB, t *Tariff) error
	UpdateTariff(ctx context.Context, db *gorm.DB, t *Tariff) error
	DeleteTariff(ctx context.Context, db *gorm.DB, id int64) error

	Durations(ctx context.Context, db *gorm.DB, tariffID int64) ([]TariffDuration, error)
	AddDuration(ctx context.Context, db *gorm.DB, d *TariffDuration) error
	DeleteDuration(ctx context.Context, db *gorm.DB, id int64) error

	TariffChannelIDs(ctx context.Context, db *gorm.DB, tariffID int64) ([]int64, error)
	ChannelsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Channel, error)

	BundleItems(ctx context.Context, db *gorm.DB, bundleID int64) ([]int64, error)
	SetBundleItems(ctx context.Context, db *gorm.DB, bundleID int64, itemIDs []int64) error
}
