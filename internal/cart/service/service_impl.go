package service

import (
	"context"

	"github.com/telestore/telestore/internal/cart/domain"
	catalogdomain "github.com/telestore/telestore/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Catalog catalogdomain.Service
}

type Service struct {
	log     *zap.Logger
	catalog catalogdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("cart.service"),
		catalog: p.Catalog,
	}
}

func (s *Service) Add(lines []domain.Line, tariffID, durationSeconds int64) ([]domain.Line, error) {
	for _, it := range lines {
		if it.TariffID == tariffID && it.DurationSeconds == durationSeconds {
			return lines, domain.ErrDuplicateLine
		}
	}
	return append(lines, domain.Line{
		TariffID:        tariffID,
		DurationSeconds: durationSeconds,
		Quantity:        1,
	}), nil
}

func (s *Service) Remove(lines []domain.Line, tariffID int64) []domain.Line {
	out := make([]domain.Line, 0, len(lines))
	for _, it := range lines {
		if it.TariffID != tariffID {
			out = append(out, it)
		}
	}
	return out
}

func (s *Service) Enrich(ctx context.Context, lines []domain.Line) (domain.Enriched, error) {
	var enriched domain.Enriched
	for _, line := range lines {
		t, err := s.catalog.GetTariff(ctx, line.TariffID)
		if err != nil {
			if err == catalogdomain.ErrNotFound {
				continue
			}
			return domain.Enriched{}, err
		}

		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}

		price := t.Price
		durationName := ""
		if line.DurationSeconds > 0 {
			durations, err := s.catalog.Durations(ctx, line.TariffID)
			if err != nil {
				return domain.Enriched{}, err
			}
			for _, d := range durations {
				if d.Seconds == line.DurationSeconds {
					price = d.Price
					durationName = d.Name
					break
				}
			}
		}

		subtotal := price * int64(qty)
		enriched.Total += subtotal
		enriched.Items = append(enriched.Items, domain.Item{
			TariffID:        line.TariffID,
			Name:            t.Name,
			Type:            t.Type,
			Price:           price,
			Quantity:        qty,
			Subtotal:        subtotal,
			DurationSeconds: line.DurationSeconds,
			DurationName:    durationName,
		})
	}
	return enriched, nil
}

func (s *Service) RequiresLogin(items []domain.Item) bool {
	for _, it := range items {
		// A bundle may contain channel access; require login for those too.
		if it.Type == catalogdomain.TypeChannel || it.Type == catalogdomain.TypeBundle {
			return true
		}
	}
	return false
}
