package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartdomain "github.com/telestore/telestore/internal/cart/domain"
	"github.com/telestore/telestore/internal/clock"
	"github.com/telestore/telestore/internal/payment/domain"
	"github.com/telestore/telestore/internal/payment/pending"
	"github.com/telestore/telestore/internal/payment/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type providerStub struct {
	redirectURL string
	createErr   error
	status      string
	statusErr   error
}

func (p *providerStub) CreateTransaction(context.Context, string, int64) (string, error) {
	if p.createErr != nil {
		return "", p.createErr
	}
	return p.redirectURL, nil
}

func (p *providerStub) TransactionStatus(context.Context, string) (string, error) {
	if p.statusErr != nil {
		return "", p.statusErr
	}
	return p.status, nil
}

func newTestService(t *testing.T, provider domain.Provider) (domain.Service, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Payment{}))

	fake := clock.NewFakeClock(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    fake,
		Provider: provider,
		Pending:  pending.NewStore(),
		Repo:     repository.Provide(),
	})
	return svc, fake
}

func createOrder(t *testing.T, svc domain.Service) string {
	t.Helper()
	resp, err := svc.CreateOrder(context.Background(), domain.CreateRequest{
		UserID: 42,
		Items:  []cartdomain.Item{{TariffID: 1, Price: 500, Quantity: 1, Subtotal: 500}},
		Total:  500,
	})
	require.NoError(t, err)
	return resp.PaymentID
}

func TestCreateOrderProviderFailureRecordsNothing(t *testing.T) {
	svc, _ := newTestService(t, &providerStub{createErr: errors.New("provider down")})

	_, err := svc.CreateOrder(context.Background(), domain.CreateRequest{Total: 500})
	require.Error(t, err)
}

func TestPollStatusMapping(t *testing.T) {
	cases := []struct {
		provider  string
		want      string
		confirmed bool
	}{
		{"successful", domain.StatusConfirmed, true},
		{"success", domain.StatusConfirmed, true},
		{"completed", domain.StatusConfirmed, true},
		{"paid", domain.StatusConfirmed, true},
		{"confirmed", domain.StatusConfirmed, true},
		{"pending", domain.StatusPending, false},
		{"processing", domain.StatusPending, false},
		{"created", domain.StatusPending, false},
		{"declined", "declined", false},
	}
	for _, tc := range cases {
		t.Run(tc.provider, func(t *testing.T) {
			svc, _ := newTestService(t, &providerStub{status: tc.provider})
			result := svc.Poll(context.Background(), "p1")
			assert.Equal(t, tc.want, result.Status)
			assert.Equal(t, tc.confirmed, result.Confirmed)
		})
	}
}

func TestPollTransportFailureIsTransient(t *testing.T) {
	svc, _ := newTestService(t, &providerStub{statusErr: errors.New("timeout")})

	result := svc.Poll(context.Background(), "p1")
	assert.Equal(t, domain.StatusError, result.Status)
	assert.False(t, result.Confirmed)
}

func TestClaimForDeliveryAtMostOnce(t *testing.T) {
	svc, _ := newTestService(t, &providerStub{redirectURL: "https://pay.example/x"})
	paymentID := createOrder(t, svc)

	const polls = 16
	var wg sync.WaitGroup
	wins := make(chan *domain.Order, polls)
	for range polls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if order, ok := svc.ClaimForDelivery(context.Background(), paymentID); ok {
				wins <- order
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []*domain.Order
	for order := range wins {
		winners = append(winners, order)
	}
	require.Len(t, winners, 1, "exactly one concurrent poll may claim delivery")
	assert.Equal(t, int64(42), winners[0].UserID)
	assert.Equal(t, int64(500), winners[0].Total)
}

func TestClaimForDeliveryUnknownOrder(t *testing.T) {
	svc, _ := newTestService(t, &providerStub{})

	_, ok := svc.ClaimForDelivery(context.Background(), "no-such-payment")
	assert.False(t, ok)
}

func TestLookupReturnsCopy(t *testing.T) {
	svc, _ := newTestService(t, &providerStub{redirectURL: "https://pay.example/x"})
	paymentID := createOrder(t, svc)

	order, ok := svc.Lookup(paymentID)
	require.True(t, ok)
	order.Total = 0

	again, ok := svc.Lookup(paymentID)
	require.True(t, ok)
	assert.Equal(t, int64(500), again.Total)
}

func TestSweepExpired(t *testing.T) {
	svc, fake := newTestService(t, &providerStub{redirectURL: "https://pay.example/x"})
	createOrder(t, svc)

	assert.Equal(t, 0, svc.SweepExpired(time.Hour))

	fake.Advance(2 * time.Hour)
	assert.Equal(t, 1, svc.SweepExpired(time.Hour))
}

func TestSweepExpiredSkipsFreshOrders(t *testing.T) {
	svc, fake := newTestService(t, &providerStub{redirectURL: "https://pay.example/x"})
	start := fake.Now()
	createOrder(t, svc)

	fake.Set(start.Add(30 * time.Minute))
	assert.Equal(t, 0, svc.SweepExpired(time.Hour))

	order, ok := svc.Lookup(createOrder(t, svc))
	require.True(t, ok)
	assert.False(t, order.Delivered)
}
