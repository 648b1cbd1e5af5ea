package domain

import "errors"

// Line is a cart reference, not a price snapshot: prices are re-resolved
// against the catalog every time the cart is rendered or checked out.
type Line struct {
	TariffID        int64 `json:"tariff_id"`
	DurationSeconds int64 `json:"duration_seconds"`
	Quantity        int   `json:"quantity"`
}

// Item is an enriched line with the currently resolved price.
type Item struct {
	TariffID        int64  `json:"tariff_id"`
	Name            string `json:"name"`
	Type            string `json:"t_type"`
	Price           int64  `json:"price"`
	Quantity        int    `json:"quantity"`
	Subtotal        int64  `json:"subtotal"`
	DurationSeconds int64  `json:"duration_seconds"`
	DurationName    string `json:"duration_name,omitempty"`
}

type Enriched struct {
	Items []Item `json:"items"`
	Total int64  `json:"total"`
}

// Grant is an ephemeral guest purchase kept only in the session.
type Grant struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Link    string `json:"link,omitempty"`
}

var ErrDuplicateLine = errors.New("duplicate_line")
