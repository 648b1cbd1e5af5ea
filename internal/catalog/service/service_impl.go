package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/telestore/telestore/internal/catalog/domain"
	"github.com/telestore/telestore/internal/clock"
	"github.com/telestore/telestore/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Categories(ctx context.Context, parentID *int64) ([]domain.Category, error) {
	return s.repo.Categories(ctx, s.db, parentID)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.repo.FindCategory(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.ParentID != nil {
		parent, err := s.repo.FindCategory(ctx, s.db, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.ErrInvalidParent
		}
	}

	now := s.clock.Now()
	c := &domain.Category{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(req.Description),
		ParentID:    req.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateCategory(ctx, s.db, c); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req domain.CategoryRequest) error {
	c, err := s.repo.FindCategory(ctx, s.db, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ErrInvalidName
	}
	if req.ParentID != nil {
		if err := s.checkParentCycle(ctx, id, *req.ParentID); err != nil {
			return err
		}
	}

	c.Name = name
	c.Slug = slug.Make(name)
	c.Description = strings.TrimSpace(req.Description)
	c.ParentID = req.ParentID
	c.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateCategory(ctx, s.db, c); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

// checkParentCycle walks up from the proposed parent and rejects any chain
// that reaches the category itself.
func (s *Service) checkParentCycle(ctx context.Context, id, parentID int64) error {
	const maxDepth = 64
	cur := parentID
	for i := 0; i < maxDepth; i++ {
		if cur == id {
			return domain.ErrParentCycle
		}
		parent, err := s.repo.FindCategory(ctx, s.db, cur)
		if err != nil {
			return err
		}
		if parent == nil {
			return domain.ErrInvalidParent
		}
		if parent.ParentID == nil {
			return nil
		}
		cur = *parent.ParentID
	}
	return domain.ErrParentCycle
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, s.db, id)
}

func (s *Service) Tariffs(ctx context.Context, categoryID *int64) ([]domain.Tariff, error) {
	return s.repo.Tariffs(ctx, s.db, categoryID)
}

func (s *Service) GetTariff(ctx context.Context, id int64) (*domain.Tariff, error) {
	t, err := s.repo.FindTariff(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (s *Service) CreateTariff(ctx context.Context, req domain.TariffRequest) (*domain.Tariff, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if !domain.ValidType(req.Type) {
		return nil, domain.ErrInvalidType
	}

	payload := ""
	if req.Payload != nil {
		payload = *req.Payload
	}
	now := s.clock.Now()
	t := &domain.Tariff{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Type:        req.Type,
		Payload:     payload,
		StatusName:  req.StatusName,
		CategoryID:  req.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateTariff(ctx, s.db, t); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) UpdateTariff(ctx context.Context, id int64, req domain.TariffRequest) error {
	t, err := s.repo.FindTariff(ctx, s.db, id)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ErrInvalidName
	}

	t.Name = name
	t.Slug = slug.Make(name)
	t.Description = strings.TrimSpace(req.Description)
	t.Price = req.Price
	t.CategoryID = req.CategoryID
	// The tariff type is fixed at creation; nil leaves the payload untouched.
	if req.Payload != nil {
		t.Payload = *req.Payload
	}
	if req.StatusName != nil {
		t.StatusName = req.StatusName
	}
	t.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateTariff(ctx, s.db, t); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (s *Service) DeleteTariff(ctx context.Context, id int64) error {
	return s.repo.DeleteTariff(ctx, s.db, id)
}

func (s *Service) Durations(ctx context.Context, tariffID int64) ([]domain.TariffDuration, error) {
	return s.repo.Durations(ctx, s.db, tariffID)
}

func (s *Service) AddDuration(ctx context.Context, req domain.DurationRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ErrInvalidName
	}
	if req.Seconds <= 0 {
		return domain.ErrInvalidSeconds
	}
	t, err := s.repo.FindTariff(ctx, s.db, req.TariffID)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound
	}
	return s.repo.AddDuration(ctx, s.db, &domain.TariffDuration{
		ID:        s.genID.Generate().Int64(),
		TariffID:  req.TariffID,
		Name:      name,
		Seconds:   req.Seconds,
		Price:     req.Price,
		IsDefault: req.IsDefault,
	})
}

func (s *Service) DeleteDuration(ctx context.Context, id int64) error {
	return s.repo.DeleteDuration(ctx, s.db, id)
}

func (s *Service) FirstInviteLink(ctx context.Context, tariffID int64) (string, int64, bool, error) {
	ids, err := s.repo.TariffChannelIDs(ctx, s.db, tariffID)
	if err != nil {
		return "", 0, false, err
	}
	channels, err := s.repo.ChannelsByIDs(ctx, s.db, ids)
	if err != nil {
		return "", 0, false, err
	}
	byID := make(map[int64]domain.Channel, len(channels))
	for _, ch := range channels {
		byID[ch.ID] = ch
	}
	for _, id := range ids {
		if ch, ok := byID[id]; ok && ch.InviteLink != "" {
			return ch.InviteLink, ch.ID, true, nil
		}
	}
	return "", 0, false, nil
}

func (s *Service) BundleItems(ctx context.Context, bundleID int64) ([]int64, error) {
	return s.repo.BundleItems(ctx, s.db, bundleID)
}

func (s *Service) SetBundleItems(ctx context.Context, bundleID int64, itemIDs []int64) error {
	return s.repo.SetBundleItems(ctx, s.db, bundleID, itemIDs)
}
