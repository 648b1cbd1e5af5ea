package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type User struct {
	TgID      int64     `json:"tg_id" gorm:"column:tg_id;primaryKey"`
	IsAdmin   bool      `json:"is_admin" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (User) TableName() string { return "users" }

type Purchase struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	UserID        int64      `json:"user_id" gorm:"not null"`
	TariffID      int64      `json:"tariff_id" gorm:"not null"`
	Link          string     `json:"link" gorm:"type:text;not null"`
	Price         int64      `json:"price" gorm:"not null"`
	PaymentID     string     `json:"payment_id" gorm:"type:text;not null"`
	TTLSeconds    *int64     `json:"ttl_seconds,omitempty" gorm:"column:ttl_seconds"`
	LastChannelID *int64     `json:"last_channel_id,omitempty"`
	BoughtAt      time.Time  `json:"bought_at" gorm:"not null"`
	LastTTLUpdate time.Time  `json:"last_ttl_update" gorm:"column:last_ttl_update;not null"`
	Activated     bool       `json:"activated" gorm:"not null"`
	Active        bool       `json:"active" gorm:"not null"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`

	// Populated by listing joins only.
	TariffName string `json:"tariff_name,omitempty" gorm:"->;-:migration"`
	TariffType string `json:"t_type,omitempty" gorm:"column:t_type;->;-:migration"`
}

func (Purchase) TableName() string { return "purchases" }

// UpsertRequest grants or renews access to a tariff.
// DurationSeconds semantics: nil = unlimited, 0 = none, positive = seconds
// added to any remaining TTL.
type UpsertRequest struct {
	UserID          int64
	TariffID        int64
	Price           int64
	Link            string
	DurationSeconds *int64
	ChannelID       *int64
	PaymentID       string
}

type Repository interface {
	EnsureUser(ctx context.Context, db *gorm.DB, tgID int64, isAdmin bool, now time.Time) error
	List(ctx context.Context, db *gorm.DB, userID int64) ([]Purchase, error)
	Find(ctx context.Context, db *gorm.DB, userID, tariffID int64) (*Purchase, error)
	Upsert(ctx context.Context, db *gorm.DB, req UpsertRequest, now time.Time) (int64, error)
	// RefreshLink replaces the stored link and channel without touching TTL.
	RefreshLink(ctx context.Context, db *gorm.DB, purchaseID int64, link string, channelID int64) error
	HasActive(ctx context.Context, db *gorm.DB, userID int64) (bool, error)
	DeactivateExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}

type Service interface {
	// EnsureUser records the Telegram identity, best-effort.
	EnsureUser(ctx context.Context, tgID int64, isAdmin bool)
	List(ctx context.Context, userID int64) ([]Purchase, error)
	Grant(ctx context.Context, req UpsertRequest) (int64, error)
	HasActive(ctx context.Context, userID int64) (bool, error)
	// RefreshAccess re-issues the current invite link for a channel purchase
	// without adding TTL.
	RefreshAccess(ctx context.Context, userID, purchaseID int64) (string, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}

var (
	ErrNotFound     = errors.New("not_found")
	ErrNoInviteLink = errors.New("no_invite_link")
)
