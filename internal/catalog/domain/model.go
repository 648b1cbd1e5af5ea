package domain

import "time"

// Tariff types. A bundle expands into its child tariffs at fulfillment time.
const (
	TypeChannel = "channel"
	TypeText    = "text"
	TypeStatus  = "status"
	TypeBundle  = "bundle"
)

func ValidType(t string) bool {
	switch t {
	case TypeChannel, TypeText, TypeStatus, TypeBundle:
		return true
	default:
		return false
	}
}

type Category struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Slug        string    `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_categories_slug"`
	Description string    `json:"description" gorm:"type:text;not null"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

func (Category) TableName() string { return "categories" }

type Tariff struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Slug        string    `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_tariffs_slug"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Price       int64     `json:"price" gorm:"not null"`
	Type        string    `json:"t_type" gorm:"column:t_type;type:text;not null"`
	Payload     string    `json:"payload" gorm:"type:text;not null"`
	StatusName  *string   `json:"status_name,omitempty" gorm:"type:text"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`

	// CategoryName is populated by listing joins only.
	CategoryName string `json:"category_name,omitempty" gorm:"->;-:migration"`
}

func (Tariff) TableName() string { return "tariffs" }

type TariffDuration struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	TariffID  int64  `json:"tariff_id" gorm:"not null"`
	Name      string `json:"name" gorm:"type:text;not null"`
	Seconds   int64  `json:"seconds" gorm:"not null"`
	Price     int64  `json:"price" gorm:"not null"`
	IsDefault bool   `json:"is_default" gorm:"not null"`
}

func (TariffDuration) TableName() string { return "tariff_durations" }

type Channel struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	Title      string `json:"title" gorm:"type:text;not null"`
	InviteLink string `json:"invite_link" gorm:"type:text;not null"`
}

func (Channel) TableName() string { return "channels" }
