package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartdomain "github.com/telestore/telestore/internal/cart/domain"
	"github.com/telestore/telestore/internal/promo/domain"
	purchasedomain "github.com/telestore/telestore/internal/purchase/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type promoRepoStub struct {
	promos      map[string]domain.Promocode
	decremented []string
}

func (r *promoRepoStub) Find(_ context.Context, _ *gorm.DB, code string) (*domain.Promocode, error) {
	if p, ok := r.promos[code]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *promoRepoStub) DecrementUse(_ context.Context, _ *gorm.DB, code string) error {
	r.decremented = append(r.decremented, code)
	return nil
}

type purchasesStub struct {
	hasActive bool
}

func (p *purchasesStub) EnsureUser(context.Context, int64, bool) {}
func (p *purchasesStub) List(context.Context, int64) ([]purchasedomain.Purchase, error) {
	return nil, nil
}
func (p *purchasesStub) Grant(context.Context, purchasedomain.UpsertRequest) (int64, error) {
	return 0, nil
}
func (p *purchasesStub) HasActive(context.Context, int64) (bool, error) {
	return p.hasActive, nil
}
func (p *purchasesStub) RefreshAccess(context.Context, int64, int64) (string, error) {
	return "", nil
}
func (p *purchasesStub) DeactivateExpired(context.Context) (int64, error) { return 0, nil }

func newTestService(repo domain.Repository, purchases purchasedomain.Service) domain.Service {
	return New(Params{
		Log:       zap.NewNop(),
		Repo:      repo,
		Purchases: purchases,
	})
}

func i64(v int64) *int64 { return &v }

func enrichedCart(tariffIDs ...int64) cartdomain.Enriched {
	var items []cartdomain.Item
	var total int64
	for _, id := range tariffIDs {
		items = append(items, cartdomain.Item{TariffID: id, Price: 1000, Quantity: 1, Subtotal: 1000})
		total += 1000
	}
	return cartdomain.Enriched{Items: items, Total: total}
}

func TestEvaluatePercentDiscount(t *testing.T) {
	repo := &promoRepoStub{promos: map[string]domain.Promocode{
		"TEN": {Code: "TEN", DiscountType: domain.DiscountPercent, DiscountValue: 10},
	}}
	svc := newTestService(repo, &purchasesStub{})

	d, err := svc.Evaluate(context.Background(), "TEN", enrichedCart(1, 2), 0)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, int64(200), d.Amount)
}

func TestEvaluateUnknownCode(t *testing.T) {
	svc := newTestService(&promoRepoStub{promos: map[string]domain.Promocode{}}, &purchasesStub{})

	_, err := svc.Evaluate(context.Background(), "NOPE", enrichedCart(1), 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvaluateExhaustedCode(t *testing.T) {
	repo := &promoRepoStub{promos: map[string]domain.Promocode{
		"GONE": {Code: "GONE", DiscountType: domain.DiscountFlat, DiscountValue: 100, UsesLeft: i64(0)},
	}}
	svc := newTestService(repo, &purchasesStub{})

	d, err := svc.Evaluate(context.Background(), "GONE", enrichedCart(1), 0)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestEvaluateBoundTariff(t *testing.T) {
	repo := &promoRepoStub{promos: map[string]domain.Promocode{
		"VIP": {Code: "VIP", DiscountType: domain.DiscountFlat, DiscountValue: 500, BoundTariffID: i64(7)},
	}}
	svc := newTestService(repo, &purchasesStub{})

	d, err := svc.Evaluate(context.Background(), "VIP", enrichedCart(1, 2), 0)
	require.NoError(t, err)
	assert.Nil(t, d, "code bound to a tariff absent from the cart must not apply")

	d, err = svc.Evaluate(context.Background(), "VIP", enrichedCart(1, 7), 0)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, int64(500), d.Amount)
}

func TestEvaluateFirstPurchaseOnly(t *testing.T) {
	repo := &promoRepoStub{promos: map[string]domain.Promocode{
		"FIRST": {Code: "FIRST", DiscountType: domain.DiscountPercent, DiscountValue: 50},
	}}
	svc := newTestService(repo, &purchasesStub{hasActive: true})

	d, err := svc.Evaluate(context.Background(), "FIRST", enrichedCart(1), 42)
	require.NoError(t, err)
	assert.Nil(t, d, "a user with an active purchase does not qualify")

	// A guest has no purchase history and qualifies.
	d, err = svc.Evaluate(context.Background(), "FIRST", enrichedCart(1), 0)
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestComputeDiscount(t *testing.T) {
	cases := []struct {
		name  string
		promo domain.Promocode
		total int64
		want  int64
	}{
		{"percent floors", domain.Promocode{DiscountType: domain.DiscountPercent, DiscountValue: 33}, 100, 33},
		{"percent floors odd total", domain.Promocode{DiscountType: domain.DiscountPercent, DiscountValue: 10}, 99, 9},
		{"flat", domain.Promocode{DiscountType: domain.DiscountFlat, DiscountValue: 250}, 1000, 250},
		{"max discount clamps", domain.Promocode{DiscountType: domain.DiscountPercent, DiscountValue: 50, MaxDiscount: i64(100)}, 1000, 100},
		{"never exceeds total", domain.Promocode{DiscountType: domain.DiscountFlat, DiscountValue: 5000}, 1000, 1000},
		{"negative clamps to zero", domain.Promocode{DiscountType: domain.DiscountFlat, DiscountValue: -10}, 1000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeDiscount(&tc.promo, tc.total))
		})
	}
}

func TestMarkUsedDecrements(t *testing.T) {
	repo := &promoRepoStub{promos: map[string]domain.Promocode{}}
	svc := newTestService(repo, &purchasesStub{})

	svc.MarkUsed(context.Background(), "TEN")
	assert.Equal(t, []string{"TEN"}, repo.decremented)
}
