package repository

import (
	"context"

	"github.com/telestore/telestore/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Categories(ctx context.Context, db *gorm.DB, parentID *int64) ([]domain.Category, error) {
	var items []domain.Category
	var err error
	if parentID == nil {
		err = db.WithContext(ctx).Raw(
			`SELECT * FROM categories WHERE parent_id IS NULL ORDER BY LOWER(name)`,
		).Scan(&items).Error
	} else {
		err = db.WithContext(ctx).Raw(
			`SELECT * FROM categories WHERE parent_id = ? ORDER BY LOWER(name)`,
			*parentID,
		).Scan(&items).Error
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindCategory(ctx context.Context, db *gorm.DB, id int64) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).Raw(`SELECT * FROM categories WHERE id = ?`, id).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) CreateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO categories (id, name, slug, description, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Description, c.ParentID, c.CreatedAt, c.UpdatedAt,
	).Error
}

func (r *repo) UpdateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	return db.WithContext(ctx).Exec(
		`UPDATE categories SET name = ?, slug = ?, description = ?, parent_id = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.ParentID, c.UpdatedAt, c.ID,
	).Error
}

func (r *repo) DeleteCategory(ctx context.Context, db *gorm.DB, id int64) error {
	// Tariffs in the deleted category become uncategorized.
	if err := db.WithContext(ctx).Exec(
		`UPDATE tariffs SET category_id = NULL WHERE category_id = ?`, id,
	).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Exec(
		`UPDATE categories SET parent_id = NULL WHERE parent_id = ?`, id,
	).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`DELETE FROM categories WHERE id = ?`, id).Error
}

func (r *repo) Tariffs(ctx context.Context, db *gorm.DB, categoryID *int64) ([]domain.Tariff, error) {
	var items []domain.Tariff
	var err error
	switch {
	case categoryID == nil:
		err = db.WithContext(ctx).Raw(
			`SELECT t.*, COALESCE(c.name, '') AS category_name
			 FROM tariffs t LEFT JOIN categories c ON c.id = t.category_id
			 ORDER BY LOWER(t.name)`,
		).Scan(&items).Error
	case *categoryID == domain.UncategorizedID:
		err = db.WithContext(ctx).Raw(
			`SELECT t.*, '' AS category_name FROM tariffs t
			 WHERE t.category_id IS NULL ORDER BY LOWER(t.name)`,
		).Scan(&items).Error
	default:
		err = db.WithContext(ctx).Raw(
			`SELECT t.*, COALESCE(c.name, '') AS category_name
			 FROM tariffs t LEFT JOIN categories c ON c.id = t.category_id
			 WHERE t.category_id = ? ORDER BY LOWER(t.name)`,
			*categoryID,
		).Scan(&items).Error
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindTariff(ctx context.Context, db *gorm.DB, id int64) (*domain.Tariff, error) {
	var t domain.Tariff
	err := db.WithContext(ctx).Raw(`SELECT * FROM tariffs WHERE id = ?`, id).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) CreateTariff(ctx context.Context, db *gorm.DB, t *domain.Tariff) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tariffs (id, name, slug, description, price, t_type, payload, status_name, category_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, t.Description, t.Price, t.Type, t.Payload, t.StatusName, t.CategoryID, t.CreatedAt, t.UpdatedAt,
	).Error
}

func (r *repo) UpdateTariff(ctx context.Context, db *gorm.DB, t *domain.Tariff) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tariffs SET name = ?, slug = ?, description = ?, price = ?, payload = ?, status_name = ?, category_id = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, t.Slug, t.Description, t.Price, t.Payload, t.StatusName, t.CategoryID, t.UpdatedAt, t.ID,
	).Error
}

func (r *repo) DeleteTariff(ctx context.Context, db *gorm.DB, id int64) error {
	for _, stmt := range []string{
		`DELETE FROM tariff_durations WHERE tariff_id = ?`,
		`DELETE FROM tariff_channels WHERE tariff_id = ?`,
		`DELETE FROM bundle_items WHERE bundle_id = ? OR item_tariff_id = ?`,
		`DELETE FROM tariffs WHERE id = ?`,
	} {
		args := []any{id}
		if stmt == `DELETE FROM bundle_items WHERE bundle_id = ? OR item_tariff_id = ?` {
			args = []any{id, id}
		}
		if err := db.WithContext(ctx).Exec(stmt, args...).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) Durations(ctx context.Context, db *gorm.DB, tariffID int64) ([]domain.TariffDuration, error) {
	var items []domain.TariffDuration
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM tariff_durations WHERE tariff_id = ? ORDER BY seconds`, tariffID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) AddDuration(ctx context.Context, db *gorm.DB, d *domain.TariffDuration) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if d.IsDefault {
			// At most one default per tariff.
			if err := tx.Exec(
				`UPDATE tariff_durations SET is_default = FALSE WHERE tariff_id = ?`, d.TariffID,
			).Error; err != nil {
				return err
			}
		}
		return tx.Exec(
			`INSERT INTO tariff_durations (id, tariff_id, name, seconds, price, is_default)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			d.ID, d.TariffID, d.Name, d.Seconds, d.Price, d.IsDefault,
		).Error
	})
}

func (r *repo) DeleteDuration(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM tariff_durations WHERE id = ?`, id).Error
}

func (r *repo) TariffChannelIDs(ctx context.Context, db *gorm.DB, tariffID int64) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT channel_id FROM tariff_channels WHERE tariff_id = ?`, tariffID,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) ChannelsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Channel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Channel
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM channels WHERE id IN ?`, ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) BundleItems(ctx context.Context, db *gorm.DB, bundleID int64) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT item_tariff_id FROM bundle_items WHERE bundle_id = ?`, bundleID,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) SetBundleItems(ctx context.Context, db *gorm.DB, bundleID int64, itemIDs []int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM bundle_items WHERE bundle_id = ?`, bundleID).Error; err != nil {
			return err
		}
		for _, id := range itemIDs {
			if id == bundleID {
				continue
			}
			if err := tx.Exec(
				`INSERT INTO bundle_items (bundle_id, item_tariff_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
				bundleID, id,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
