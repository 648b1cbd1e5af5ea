package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telestore/telestore/internal/catalog/domain"
	"github.com/telestore/telestore/internal/catalog/repository"
	"github.com/telestore/telestore/internal/clock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Category{},
		&domain.Tariff{},
		&domain.TariffDuration{},
		&domain.Channel{},
	))
	require.NoError(t, db.Exec(
		`CREATE TABLE tariff_channels (tariff_id INTEGER NOT NULL, channel_id INTEGER NOT NULL, PRIMARY KEY (tariff_id, channel_id))`,
	).Error)
	require.NoError(t, db.Exec(
		`CREATE TABLE bundle_items (bundle_id INTEGER NOT NULL, item_tariff_id INTEGER NOT NULL, PRIMARY KEY (bundle_id, item_tariff_id))`,
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestCreateCategorySlugAndValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: "  Премиум каналы  "})
	require.NoError(t, err)
	assert.Equal(t, "Премиум каналы", c.Name)
	assert.Equal(t, "premium-kanaly", c.Slug)

	_, err = svc.CreateCategory(ctx, domain.CategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	missing := int64(12345)
	_, err = svc.CreateCategory(ctx, domain.CategoryRequest{Name: "Child", ParentID: &missing})
	assert.ErrorIs(t, err, domain.ErrInvalidParent)
}

func TestUpdateCategoryRejectsCycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)

	// A under B would close the loop A -> B -> A.
	err = svc.UpdateCategory(ctx, a.ID, domain.CategoryRequest{Name: "A", ParentID: &b.ID})
	assert.ErrorIs(t, err, domain.ErrParentCycle)

	// Directly self-parenting is the degenerate cycle.
	err = svc.UpdateCategory(ctx, a.ID, domain.CategoryRequest{Name: "A", ParentID: &a.ID})
	assert.ErrorIs(t, err, domain.ErrParentCycle)
}

func TestCreateTariffValidatesType(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTariff(ctx, domain.TariffRequest{Name: "X", Type: "balloon"})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	tariff, err := svc.CreateTariff(ctx, domain.TariffRequest{Name: "Канал на месяц", Type: domain.TypeChannel, Price: 500})
	require.NoError(t, err)
	assert.Equal(t, "kanal-na-mesiats", tariff.Slug)
}

func TestDuplicateSlugRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: "Каналы"})
	require.NoError(t, err)

	// Same name slugs to the same value.
	_, err = svc.CreateCategory(ctx, domain.CategoryRequest{Name: "Каналы"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)

	other, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: "Тексты"})
	require.NoError(t, err)
	err = svc.UpdateCategory(ctx, other.ID, domain.CategoryRequest{Name: "Каналы"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)

	// Renaming a category to its own name is not a collision.
	require.NoError(t, svc.UpdateCategory(ctx, first.ID, domain.CategoryRequest{Name: "Каналы"}))

	_, err = svc.CreateTariff(ctx, domain.TariffRequest{Name: "Канал", Type: domain.TypeChannel, Price: 500})
	require.NoError(t, err)
	_, err = svc.CreateTariff(ctx, domain.TariffRequest{Name: "Канал", Type: domain.TypeText, Price: 100})
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
}

func TestAddDurationSingleDefault(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tariff, err := svc.CreateTariff(ctx, domain.TariffRequest{Name: "Канал", Type: domain.TypeChannel, Price: 500})
	require.NoError(t, err)

	require.NoError(t, svc.AddDuration(ctx, domain.DurationRequest{
		TariffID: tariff.ID, Name: "Неделя", Seconds: 604800, Price: 200, IsDefault: true,
	}))
	require.NoError(t, svc.AddDuration(ctx, domain.DurationRequest{
		TariffID: tariff.ID, Name: "Месяц", Seconds: 2592000, Price: 500, IsDefault: true,
	}))

	durations, err := svc.Durations(ctx, tariff.ID)
	require.NoError(t, err)
	require.Len(t, durations, 2)

	defaults := 0
	for _, d := range durations {
		if d.IsDefault {
			defaults++
			assert.Equal(t, "Месяц", d.Name)
		}
	}
	assert.Equal(t, 1, defaults, "only the latest default may remain")
}

func TestSetBundleItemsSkipsSelf(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bundle, err := svc.CreateTariff(ctx, domain.TariffRequest{Name: "Набор", Type: domain.TypeBundle, Price: 900})
	require.NoError(t, err)
	child, err := svc.CreateTariff(ctx, domain.TariffRequest{Name: "Текст", Type: domain.TypeText, Price: 100})
	require.NoError(t, err)

	require.NoError(t, svc.SetBundleItems(ctx, bundle.ID, []int64{child.ID, bundle.ID}))

	items, err := svc.BundleItems(ctx, bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{child.ID}, items, "a bundle may not contain itself")
}

func TestDeleteCategoryDetachesReferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	parent, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: "Parent"})
	require.NoError(t, err)
	child, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: "Child", ParentID: &parent.ID})
	require.NoError(t, err)
	tariff, err := svc.CreateTariff(ctx, domain.TariffRequest{
		Name: "Канал", Type: domain.TypeChannel, Price: 500, CategoryID: &parent.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, parent.ID))

	got, err := svc.GetCategory(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID, "children become roots, not orphans")

	gotTariff, err := svc.GetTariff(ctx, tariff.ID)
	require.NoError(t, err)
	assert.Nil(t, gotTariff.CategoryID)
}
