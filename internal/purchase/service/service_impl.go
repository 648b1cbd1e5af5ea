package service

import (
	"context"

	"github.com/telestore/telestore/internal/autoapprove"
	catalogdomain "github.com/telestore/telestore/internal/catalog/domain"
	"github.com/telestore/telestore/internal/clock"
	"github.com/telestore/telestore/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Catalog catalogdomain.Service
	Approve *autoapprove.Store
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	catalog catalogdomain.Service
	approve *autoapprove.Store
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("purchase.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		catalog: p.Catalog,
		approve: p.Approve,
	}
}

func (s *Service) EnsureUser(ctx context.Context, tgID int64, isAdmin bool) {
	if err := s.repo.EnsureUser(ctx, s.db, tgID, isAdmin, s.clock.Now()); err != nil {
		s.log.Warn("ensure user failed", zap.Int64("tg_id", tgID), zap.Error(err))
	}
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Purchase, error) {
	return s.repo.List(ctx, s.db, userID)
}

func (s *Service) Grant(ctx context.Context, req domain.UpsertRequest) (int64, error) {
	return s.repo.Upsert(ctx, s.db, req, s.clock.Now())
}

func (s *Service) HasActive(ctx context.Context, userID int64) (bool, error) {
	return s.repo.HasActive(ctx, s.db, userID)
}

func (s *Service) RefreshAccess(ctx context.Context, userID, purchaseID int64) (string, error) {
	purchases, err := s.repo.List(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	for _, p := range purchases {
		if p.ID != purchaseID || p.TariffType != catalogdomain.TypeChannel {
			continue
		}
		link, channelID, ok, err := s.catalog.FirstInviteLink(ctx, p.TariffID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domain.ErrNoInviteLink
		}
		if err := s.repo.RefreshLink(ctx, s.db, p.ID, link, channelID); err != nil {
			return "", err
		}
		s.approve.Approve(ctx, channelID, userID, p.TTLSeconds)
		return link, nil
	}
	return "", domain.ErrNotFound
}

func (s *Service) DeactivateExpired(ctx context.Context) (int64, error) {
	return s.repo.DeactivateExpired(ctx, s.db, s.clock.Now())
}
