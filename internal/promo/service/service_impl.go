package service

import (
	"context"
	"strings"

	cartdomain "github.com/telestore/telestore/internal/cart/domain"
	"github.com/telestore/telestore/internal/promo/domain"
	purchasedomain "github.com/telestore/telestore/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	Purchases purchasedomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	purchases purchasedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("promo.service"),
		repo:      p.Repo,
		purchases: p.Purchases,
	}
}

// Evaluate applies the applicability rules and computes the discount. Both
// the cart preview and checkout call this; there is deliberately no second
// code path.
func (s *Service) Evaluate(ctx context.Context, code string, enriched cartdomain.Enriched, userID int64) (*domain.Discount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrNotFound
	}

	promo, err := s.repo.Find(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, domain.ErrNotFound
	}

	if promo.UsesLeft != nil && *promo.UsesLeft <= 0 {
		return nil, nil
	}

	if promo.BoundTariffID != nil {
		found := false
		for _, it := range enriched.Items {
			if it.TariffID == *promo.BoundTariffID {
				found = true
				break
			}
		}
		if !found {
			return nil, nil
		}
	}

	// First-purchase-only: a logged-in user with any active purchase does not
	// qualify.
	if userID > 0 {
		hasActive, err := s.purchases.HasActive(ctx, userID)
		if err != nil {
			return nil, err
		}
		if hasActive {
			return nil, nil
		}
	}

	amount := ComputeDiscount(promo, enriched.Total)
	return &domain.Discount{Promo: *promo, Amount: amount}, nil
}

// ComputeDiscount is the pure discount arithmetic: floor percentage or flat
// value, clamped to max_discount and to the total.
func ComputeDiscount(promo *domain.Promocode, total int64) int64 {
	var amount int64
	if promo.DiscountType == domain.DiscountPercent {
		amount = total * promo.DiscountValue / 100
	} else {
		amount = promo.DiscountValue
	}
	if promo.MaxDiscount != nil && amount > *promo.MaxDiscount {
		amount = *promo.MaxDiscount
	}
	if amount > total {
		amount = total
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

func (s *Service) MarkUsed(ctx context.Context, code string) {
	if err := s.repo.DecrementUse(ctx, s.db, code); err != nil {
		s.log.Warn("promo use decrement failed", zap.String("code", code), zap.Error(err))
	}
}
