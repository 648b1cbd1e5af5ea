package domain

import (
	"context"
	"errors"
	"time"

	cartdomain "github.com/telestore/telestore/internal/cart/domain"
	"gorm.io/gorm"
)

// GuestUserID is the sentinel identity for carts without a Telegram login.
const GuestUserID int64 = -1

// Normalized poll statuses. Anything the provider reports outside the known
// synonym sets is passed through verbatim.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusError     = "error"
)

type Payment struct {
	GUID      string    `json:"guid" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null"`
	TariffID  int64     `json:"tariff_id" gorm:"not null"`
	Amount    int64     `json:"amount" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// Order is a pending checkout awaiting provider confirmation. It lives only
// in process memory; a restart forfeits undelivered orders.
type Order struct {
	UserID      int64
	Items       []cartdomain.Item
	Total       int64
	PromoCode   string
	RedirectURL string
	Delivered   bool
	CreatedAt   time.Time
}

type CreateRequest struct {
	UserID    int64
	Items     []cartdomain.Item
	Total     int64
	PromoCode string
}

type CreateResponse struct {
	PaymentID   string
	RedirectURL string
}

type StatusResult struct {
	Status    string
	Confirmed bool
}

// Provider is the external payment HTTP API.
type Provider interface {
	CreateTransaction(ctx context.Context, paymentID string, amount int64) (redirectURL string, err error)
	TransactionStatus(ctx context.Context, paymentID string) (string, error)
}

type Repository interface {
	// ClaimProcessed inserts the idempotency record; false when the guid was
	// already recorded.
	ClaimProcessed(ctx context.Context, db *gorm.DB, p *Payment) (bool, error)
	IsProcessed(ctx context.Context, db *gorm.DB, guid string) (bool, error)
}

type Service interface {
	// CreateOrder builds the provider transaction and records the pending
	// order. No order is recorded when the provider call fails.
	CreateOrder(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	// Poll asks the provider for the payment status and normalizes it.
	// Transport and parse failures degrade to StatusError, never an error.
	Poll(ctx context.Context, paymentID string) StatusResult
	// ClaimForDelivery atomically claims the pending order for fulfillment.
	// It returns false when the order is unknown, already delivered, or the
	// persistent idempotency record already exists.
	ClaimForDelivery(ctx context.Context, paymentID string) (*Order, bool)
	// Lookup returns a copy of the pending order without claiming it.
	Lookup(paymentID string) (*Order, bool)
	// SweepExpired drops pending orders older than the given ttl.
	SweepExpired(ttl time.Duration) int
}

var ErrNoRedirect = errors.New("no_redirect_url")
