package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/telestore/telestore/internal/autoapprove"
	cartdomain "github.com/telestore/telestore/internal/cart/domain"
	catalogdomain "github.com/telestore/telestore/internal/catalog/domain"
	"github.com/telestore/telestore/internal/config"
	paymentdomain "github.com/telestore/telestore/internal/payment/domain"
	promodomain "github.com/telestore/telestore/internal/promo/domain"
	purchasedomain "github.com/telestore/telestore/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg       config.Config
	Log       *zap.Logger
	Catalog   catalogdomain.Service
	Purchases purchasedomain.Service
	Promos    promodomain.Service
	Approve   *autoapprove.Store
}

// Service walks a confirmed order's items and grants access per tariff type.
type Service struct {
	cfg       config.Config
	log       *zap.Logger
	catalog   catalogdomain.Service
	purchases purchasedomain.Service
	promos    promodomain.Service
	approve   *autoapprove.Store
}

func New(p Params) *Service {
	return &Service{
		cfg:       p.Cfg,
		log:       p.Log.Named("fulfillment"),
		catalog:   p.Catalog,
		purchases: p.Purchases,
		promos:    p.Promos,
		approve:   p.Approve,
	}
}

// Deliver grants every item of a claimed order. Guests receive only ephemeral
// grants, returned to the caller to be persisted into the session. Individual
// item failures are logged and skipped so one broken tariff cannot hold the
// rest of the order hostage.
func (s *Service) Deliver(ctx context.Context, paymentID string, order *paymentdomain.Order) []cartdomain.Grant {
	userID := order.UserID
	var grants []cartdomain.Grant

	for _, item := range order.Items {
		tariff, err := s.catalog.GetTariff(ctx, item.TariffID)
		if err != nil {
			s.log.Warn("tariff vanished before delivery",
				zap.String("payment_id", paymentID),
				zap.Int64("tariff_id", item.TariffID),
				zap.Error(err),
			)
			continue
		}

		price := item.Price * int64(item.Quantity)
		duration := item.DurationSeconds

		if tariff.Type == catalogdomain.TypeBundle {
			children, err := s.catalog.BundleItems(ctx, tariff.ID)
			if err != nil {
				s.log.Warn("bundle expansion failed", zap.Int64("bundle_id", tariff.ID), zap.Error(err))
				continue
			}
			for _, childID := range children {
				child, err := s.catalog.GetTariff(ctx, childID)
				if err != nil {
					continue
				}
				// The bundle price was charged once; children are free.
				grants = s.deliverSingle(ctx, userID, child, 0, duration, paymentID, grants)
			}
			continue
		}

		grants = s.deliverSingle(ctx, userID, tariff, price, duration, paymentID, grants)
	}

	if order.PromoCode != "" {
		s.promos.MarkUsed(ctx, order.PromoCode)
	}

	return grants
}

func (s *Service) deliverSingle(ctx context.Context, userID int64, tariff *catalogdomain.Tariff,
	price, duration int64, paymentID string, grants []cartdomain.Grant) []cartdomain.Grant {

	switch tariff.Type {
	case catalogdomain.TypeText:
		if userID > 0 {
			zero := int64(0)
			s.grant(ctx, purchasedomain.UpsertRequest{
				UserID:          userID,
				TariffID:        tariff.ID,
				Price:           price,
				Link:            tariff.Payload,
				DurationSeconds: &zero,
				PaymentID:       paymentID,
			})
			return grants
		}
		return append(grants, cartdomain.Grant{
			Name:    tariff.Name,
			Type:    catalogdomain.TypeText,
			Content: tariff.Payload,
		})

	case catalogdomain.TypeStatus:
		code := uuid.NewString()[:8]
		link := code
		if s.cfg.StatusBotLink != "" {
			link = fmt.Sprintf("%s?start=%s", s.cfg.StatusBotLink, code)
		}
		if userID > 0 {
			zero := int64(0)
			s.grant(ctx, purchasedomain.UpsertRequest{
				UserID:          userID,
				TariffID:        tariff.ID,
				Price:           price,
				Link:            link,
				DurationSeconds: &zero,
				PaymentID:       paymentID,
			})
			return grants
		}
		return append(grants, cartdomain.Grant{
			Name: tariff.Name,
			Type: catalogdomain.TypeStatus,
			Link: link,
		})

	default:
		// Channel access. Checkout requires a login for channel carts, so a
		// guest cannot reach this branch.
		link, channelID, ok, err := s.catalog.FirstInviteLink(ctx, tariff.ID)
		if err != nil || !ok {
			s.log.Warn("no invite link for channel tariff",
				zap.Int64("tariff_id", tariff.ID),
				zap.Error(err),
			)
			return grants
		}
		if userID <= 0 {
			return grants
		}

		var ttl *int64
		if duration > 0 {
			ttl = &duration
		}
		s.grant(ctx, purchasedomain.UpsertRequest{
			UserID:          userID,
			TariffID:        tariff.ID,
			Price:           price,
			Link:            link,
			DurationSeconds: ttl,
			ChannelID:       &channelID,
			PaymentID:       paymentID,
		})
		s.approve.Approve(ctx, channelID, userID, ttl)
		return grants
	}
}

func (s *Service) grant(ctx context.Context, req purchasedomain.UpsertRequest) {
	if _, err := s.purchases.Grant(ctx, req); err != nil {
		s.log.Error("purchase grant failed",
			zap.Int64("user_id", req.UserID),
			zap.Int64("tariff_id", req.TariffID),
			zap.Error(err),
		)
	}
}
