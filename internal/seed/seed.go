package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	catalogdomain "github.com/telestore/telestore/internal/catalog/domain"
	"gorm.io/gorm"
)

// EnsureDemoCatalog seeds a small demo catalog when the tariffs table is
// empty. Meant for local bootstrap only.
func EnsureDemoCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Raw(`SELECT COUNT(*) FROM tariffs`).Scan(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		category := catalogdomain.Category{
			ID:          node.Generate().Int64(),
			Name:        "Channels",
			Slug:        slug.Make("Channels"),
			Description: "Private channel access",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Exec(
			`INSERT INTO categories (id, name, slug, description, parent_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, NULL, ?, ?)`,
			category.ID, category.Name, category.Slug, category.Description, now, now,
		).Error; err != nil {
			return err
		}

		channelID := node.Generate().Int64()
		if err := tx.Exec(
			`INSERT INTO channels (id, title, invite_link) VALUES (?, ?, ?)`,
			channelID, "Demo channel", "https://t.me/+demo",
		).Error; err != nil {
			return err
		}

		tariffs := []struct {
			name, ttype, payload string
			price                int64
			categoryID           *int64
		}{
			{"Demo channel access", catalogdomain.TypeChannel, "", 49900, &category.ID},
			{"Starter guide", catalogdomain.TypeText, "Welcome aboard!", 9900, nil},
		}
		for _, t := range tariffs {
			id := node.Generate().Int64()
			if err := tx.Exec(
				`INSERT INTO tariffs (id, name, slug, description, price, t_type, payload, status_name, category_id, created_at, updated_at)
				 VALUES (?, ?, ?, '', ?, ?, ?, NULL, ?, ?, ?)`,
				id, t.name, slug.Make(t.name), t.price, t.ttype, t.payload, t.categoryID, now, now,
			).Error; err != nil {
				return err
			}
			if t.ttype == catalogdomain.TypeChannel {
				if err := tx.Exec(
					`INSERT INTO tariff_channels (tariff_id, channel_id) VALUES (?, ?)`,
					id, channelID,
				).Error; err != nil {
					return err
				}
				if err := tx.Exec(
					`INSERT INTO tariff_durations (id, tariff_id, name, seconds, price, is_default)
					 VALUES (?, ?, ?, ?, ?, TRUE)`,
					node.Generate().Int64(), id, "30 days", int64(30*24*3600), t.price,
				).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
