package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/telestore/telestore/internal/purchase/domain"
	"gorm.io/gorm"
)

type repo struct {
	genID *snowflake.Node
}

func Provide(genID *snowflake.Node) domain.Repository {
	return &repo{genID: genID}
}

func (r *repo) EnsureUser(ctx context.Context, db *gorm.DB, tgID int64, isAdmin bool, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (tg_id, is_admin, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		tgID, isAdmin, now,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Purchase, error) {
	var items []domain.Purchase
	err := db.WithContext(ctx).Raw(
		`SELECT p.*, t.name AS tariff_name, t.t_type
		 FROM purchases p JOIN tariffs t ON t.id = p.tariff_id
		 WHERE p.user_id = ? ORDER BY p.bought_at DESC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, userID, tariffID int64) (*domain.Purchase, error) {
	var p domain.Purchase
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM purchases WHERE user_id = ? AND tariff_id = ? LIMIT 1`,
		userID, tariffID,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

// Upsert keeps at most one purchase row per (user, tariff). Repeat purchases
// accumulate remaining TTL instead of inserting new rows.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, req domain.UpsertRequest, now time.Time) (int64, error) {
	var id int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.Find(ctx, tx, req.UserID, req.TariffID)
		if err != nil {
			return err
		}

		if existing != nil {
			id = existing.ID

			var newTTL *int64
			switch {
			case req.DurationSeconds == nil:
				newTTL = nil // unlimited
			case *req.DurationSeconds == 0:
				zero := int64(0)
				newTTL = &zero
			default:
				current := int64(0)
				if existing.TTLSeconds != nil {
					current = *existing.TTLSeconds
				}
				total := current + *req.DurationSeconds
				newTTL = &total
			}

			var expiresAt *time.Time
			if newTTL != nil && *newTTL > 0 {
				at := now.Add(time.Duration(*newTTL) * time.Second)
				expiresAt = &at
			}

			if req.ChannelID == nil {
				return tx.Exec(
					`UPDATE purchases SET link = ?, price = ?, payment_id = ?, ttl_seconds = ?, active = TRUE, last_ttl_update = ?, expires_at = ?
					 WHERE id = ?`,
					req.Link, req.Price, req.PaymentID, newTTL, now, expiresAt, id,
				).Error
			}
			return tx.Exec(
				`UPDATE purchases SET link = ?, price = ?, payment_id = ?, ttl_seconds = ?, last_channel_id = ?, active = TRUE, last_ttl_update = ?, expires_at = ?
				 WHERE id = ?`,
				req.Link, req.Price, req.PaymentID, newTTL, req.ChannelID, now, expiresAt, id,
			).Error
		}

		ttl := req.DurationSeconds
		var expiresAt *time.Time
		if ttl != nil && *ttl > 0 {
			at := now.Add(time.Duration(*ttl) * time.Second)
			expiresAt = &at
		}
		id = r.genID.Generate().Int64()
		return tx.Exec(
			`INSERT INTO purchases (id, user_id, tariff_id, link, price, payment_id, ttl_seconds, last_channel_id, bought_at, last_ttl_update, activated, active, expires_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, TRUE, ?)`,
			id, req.UserID, req.TariffID, req.Link, req.Price, req.PaymentID, ttl, req.ChannelID, now, now, expiresAt,
		).Error
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) RefreshLink(ctx context.Context, db *gorm.DB, purchaseID int64, link string, channelID int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE purchases SET link = ?, last_channel_id = ? WHERE id = ?`,
		link, channelID, purchaseID,
	).Error
}

func (r *repo) HasActive(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM purchases WHERE user_id = ? AND active = TRUE`, userID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) DeactivateExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE purchases SET active = FALSE WHERE active = TRUE AND expires_at IS NOT NULL AND expires_at < ?`,
		now,
	)
	return res.RowsAffected, res.Error
}
