package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/telestore/telestore/internal/clock"
	"github.com/telestore/telestore/internal/payment/domain"
	"github.com/telestore/telestore/internal/payment/pending"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Provider statuses that mean a completed payment. Everything here maps to
// the single normalized "confirmed".
var successStates = map[string]bool{
	"successful": true,
	"success":    true,
	"completed":  true,
	"paid":       true,
	"confirmed":  true,
}

var pendingStates = map[string]bool{
	"pending":    true,
	"processing": true,
	"created":    true,
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Provider domain.Provider
	Pending  *pending.Store
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	provider domain.Provider
	pending  *pending.Store
	repo     domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		clock:    p.Clock,
		provider: p.Provider,
		pending:  p.Pending,
		repo:     p.Repo,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateRequest) (*domain.CreateResponse, error) {
	paymentID := uuid.NewString()

	redirectURL, err := s.provider.CreateTransaction(ctx, paymentID, req.Total)
	if err != nil {
		s.log.Error("payment init failed", zap.String("payment_id", paymentID), zap.Error(err))
		return nil, err
	}

	s.pending.Put(paymentID, domain.Order{
		UserID:      req.UserID,
		Items:       req.Items,
		Total:       req.Total,
		PromoCode:   req.PromoCode,
		RedirectURL: redirectURL,
		CreatedAt:   s.clock.Now(),
	})

	return &domain.CreateResponse{
		PaymentID:   paymentID,
		RedirectURL: redirectURL,
	}, nil
}

func (s *Service) Poll(ctx context.Context, paymentID string) domain.StatusResult {
	status, err := s.provider.TransactionStatus(ctx, paymentID)
	if err != nil {
		// Transient by contract: the client keeps polling.
		s.log.Warn("status check failed", zap.String("payment_id", paymentID), zap.Error(err))
		return domain.StatusResult{Status: domain.StatusError}
	}

	switch {
	case successStates[status]:
		return domain.StatusResult{Status: domain.StatusConfirmed, Confirmed: true}
	case pendingStates[status]:
		return domain.StatusResult{Status: domain.StatusPending}
	default:
		return domain.StatusResult{Status: status}
	}
}

// ClaimForDelivery is the double gate from the delivery contract: the
// in-memory claim is a compare-and-set, and the payments insert fails on a
// duplicate guid. Either gate losing means another request already delivered.
func (s *Service) ClaimForDelivery(ctx context.Context, paymentID string) (*domain.Order, bool) {
	order, ok := s.pending.Claim(paymentID)
	if !ok {
		return nil, false
	}

	claimed, err := s.repo.ClaimProcessed(ctx, s.db, &domain.Payment{
		GUID:      paymentID,
		UserID:    order.UserID,
		TariffID:  0, // cart order sentinel
		Amount:    order.Total,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		s.log.Error("idempotency claim failed", zap.String("payment_id", paymentID), zap.Error(err))
		s.pending.Release(paymentID)
		return nil, false
	}
	if !claimed {
		return nil, false
	}
	return order, true
}

func (s *Service) Lookup(paymentID string) (*domain.Order, bool) {
	return s.pending.Get(paymentID)
}

func (s *Service) SweepExpired(ttl time.Duration) int {
	return s.pending.SweepExpired(ttl, s.clock.Now())
}
