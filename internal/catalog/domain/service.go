package domain

import (
	"context"
	"errors"
)

// UncategorizedID is the sentinel category id for tariffs without a category.
const UncategorizedID int64 = 0

type Service interface {
	Categories(ctx context.Context, parentID *int64) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, req CategoryRequest) error
	DeleteCategory(ctx context.Context, id int64) error

	Tariffs(ctx context.Context, categoryID *int64) ([]Tariff, error)
	GetTariff(ctx context.Context, id int64) (*Tariff, error)
	CreateTariff(ctx context.Context, req TariffRequest) (*Tariff, error)
	UpdateTariff(ctx context.Context, id int64, req TariffRequest) error
	DeleteTariff(ctx context.Context, id int64) error

	Durations(ctx context.Context, tariffID int64) ([]TariffDuration, error)
	AddDuration(ctx context.Context, req DurationRequest) error
	DeleteDuration(ctx context.Context, id int64) error

	// FirstInviteLink picks the first channel bound to the tariff that has a
	// non-empty invite link, in store order.
	FirstInviteLink(ctx context.Context, tariffID int64) (link string, channelID int64, ok bool, err error)

	BundleItems(ctx context.Context, bundleID int64) ([]int64, error)
	SetBundleItems(ctx context.Context, bundleID int64, itemIDs []int64) error
}

type CategoryRequest struct {
	Name        string
	Description string
	ParentID    *int64
}

type TariffRequest struct {
	Name        string
	Description string
	Price       int64
	Type        string
	// Payload and StatusName are left untouched on update when nil.
	Payload    *string
	StatusName *string
	CategoryID *int64
}

type DurationRequest struct {
	TariffID  int64
	Name      string
	Seconds   int64
	Price     int64
	IsDefault bool
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidParent  = errors.New("invalid_parent")
	ErrParentCycle    = errors.New("parent_cycle")
	ErrInvalidSeconds = errors.New("invalid_seconds")
	ErrDuplicateSlug  = errors.New("duplicate_slug")
)
