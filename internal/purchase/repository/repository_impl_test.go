package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/telestore/telestore/internal/catalog/domain"
	"github.com/telestore/telestore/internal/purchase/domain"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Purchase{},
		&catalogdomain.Tariff{},
	))
	return db
}

func newTestRepo(t *testing.T) domain.Repository {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return Provide(node)
}

func TestEnsureUserIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.EnsureUser(ctx, db, 42, false, now))
	require.NoError(t, repo.EnsureUser(ctx, db, 42, true, now))

	var count int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM users WHERE tg_id = 42`).Scan(&count).Error)
	assert.Equal(t, int64(1), count)

	// The second insert must not flip the original is_admin.
	var isAdmin bool
	require.NoError(t, db.Raw(`SELECT is_admin FROM users WHERE tg_id = 42`).Scan(&isAdmin).Error)
	assert.False(t, isAdmin)
}

func TestUpsertAccumulatesTTL(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	hour := int64(3600)
	id1, err := repo.Upsert(ctx, db, domain.UpsertRequest{
		UserID: 42, TariffID: 7, Price: 100, Link: "https://t.me/+abc",
		DurationSeconds: &hour, PaymentID: "p1",
	}, now)
	require.NoError(t, err)

	half := int64(1800)
	later := now.Add(10 * time.Minute)
	id2, err := repo.Upsert(ctx, db, domain.UpsertRequest{
		UserID: 42, TariffID: 7, Price: 100, Link: "https://t.me/+def",
		DurationSeconds: &half, PaymentID: "p2",
	}, later)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "repeat purchase must reuse the row")

	p, err := repo.Find(ctx, db, 42, 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.TTLSeconds)
	assert.Equal(t, int64(5400), *p.TTLSeconds)
	require.NotNil(t, p.ExpiresAt)
	assert.Equal(t, later.Add(5400*time.Second), p.ExpiresAt.UTC())
	assert.Equal(t, "https://t.me/+def", p.Link)
}

func TestUpsertUnlimitedAndZero(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// nil duration means unlimited access.
	_, err := repo.Upsert(ctx, db, domain.UpsertRequest{
		UserID: 1, TariffID: 1, Link: "x", PaymentID: "p1",
	}, now)
	require.NoError(t, err)

	p, err := repo.Find(ctx, db, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.TTLSeconds)
	assert.Nil(t, p.ExpiresAt)

	// An explicit zero resets to no TTL without becoming unlimited.
	zero := int64(0)
	_, err = repo.Upsert(ctx, db, domain.UpsertRequest{
		UserID: 1, TariffID: 1, Link: "x", DurationSeconds: &zero, PaymentID: "p2",
	}, now)
	require.NoError(t, err)

	p, err = repo.Find(ctx, db, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, p.TTLSeconds)
	assert.Equal(t, int64(0), *p.TTLSeconds)
	assert.Nil(t, p.ExpiresAt)
}

func TestDeactivateExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	hour := int64(3600)
	_, err := repo.Upsert(ctx, db, domain.UpsertRequest{
		UserID: 1, TariffID: 1, Link: "a", DurationSeconds: &hour, PaymentID: "p1",
	}, now)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, db, domain.UpsertRequest{
		UserID: 1, TariffID: 2, Link: "b", PaymentID: "p2",
	}, now)
	require.NoError(t, err)

	active, err := repo.HasActive(ctx, db, 1)
	require.NoError(t, err)
	assert.True(t, active)

	n, err := repo.DeactivateExpired(ctx, db, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the TTL-bound purchase expires")

	// The unlimited purchase keeps the user active.
	active, err = repo.HasActive(ctx, db, 1)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestRefreshLinkLeavesTTLUntouched(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	hour := int64(3600)
	ch := int64(100)
	id, err := repo.Upsert(ctx, db, domain.UpsertRequest{
		UserID: 1, TariffID: 1, Link: "old", DurationSeconds: &hour, ChannelID: &ch, PaymentID: "p1",
	}, now)
	require.NoError(t, err)

	require.NoError(t, repo.RefreshLink(ctx, db, id, "new", 200))

	p, err := repo.Find(ctx, db, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", p.Link)
	require.NotNil(t, p.LastChannelID)
	assert.Equal(t, int64(200), *p.LastChannelID)
	require.NotNil(t, p.TTLSeconds)
	assert.Equal(t, int64(3600), *p.TTLSeconds)
}
