package domain

import (
	"context"
	"errors"
	"time"

	cartdomain "github.com/telestore/telestore/internal/cart/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session is the persisted row. Data holds the serialized State.
type Session struct {
	Token     string         `gorm:"primaryKey;type:text"`
	Data      datatypes.JSON `gorm:"type:text;not null"`
	ExpiresAt time.Time      `gorm:"not null;index"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (Session) TableName() string { return "sessions" }

// Flash is a one-shot message drained on the next page render.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// State is everything the storefront keeps per visitor. A zero State is a
// valid anonymous session.
type State struct {
	UserID         int64             `json:"user_id,omitempty"`
	FirstName      string            `json:"first_name,omitempty"`
	Username       string            `json:"username,omitempty"`
	IsAdmin        bool              `json:"is_admin,omitempty"`
	Cart           []cartdomain.Line `json:"cart,omitempty"`
	PromoCode      string            `json:"promo_code,omitempty"`
	GuestPurchases []cartdomain.Grant `json:"guest_purchases,omitempty"`
	Flashes        []Flash           `json:"flashes,omitempty"`
}

func (s *State) LoggedIn() bool { return s.UserID > 0 }

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, token string, now time.Time) (*Session, error)
	Save(ctx context.Context, db *gorm.DB, sess *Session) error
	Delete(ctx context.Context, db *gorm.DB, token string) error
	DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}

var ErrNotFound = errors.New("session_not_found")
