package domain

import (
	"context"
	"errors"

	cartdomain "github.com/telestore/telestore/internal/cart/domain"
	"gorm.io/gorm"
)

const (
	DiscountPercent = "percent"
	DiscountFlat    = "flat"
)

type Promocode struct {
	Code          string `json:"code" gorm:"primaryKey"`
	DiscountType  string `json:"discount_type" gorm:"type:text;not null"`
	DiscountValue int64  `json:"discount_value" gorm:"not null"`
	MaxDiscount   *int64 `json:"max_discount,omitempty"`
	UsesLeft      *int64 `json:"uses_left,omitempty"`
	BoundTariffID *int64 `json:"bound_tariff_id,omitempty"`
}

func (Promocode) TableName() string { return "promocodes" }

// Discount is the result of a successful promo evaluation.
type Discount struct {
	Promo  Promocode
	Amount int64
}

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, code string) (*Promocode, error)
	DecrementUse(ctx context.Context, db *gorm.DB, code string) error
}

type Service interface {
	// Evaluate is the single applicability + discount computation shared by
	// the cart preview and checkout. A nil result with a nil error means the
	// code exists but does not apply.
	Evaluate(ctx context.Context, code string, enriched cartdomain.Enriched, userID int64) (*Discount, error)
	// MarkUsed decrements the remaining uses, best-effort.
	MarkUsed(ctx context.Context, code string)
}

var ErrNotFound = errors.New("not_found")
