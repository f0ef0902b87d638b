package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a recorded user interaction.
type EventType string

const (
	EventView     EventType = "view"
	EventPurchase EventType = "purchase"
	EventClick    EventType = "click"
	EventWishlist EventType = "wishlist"
)

// UserEvent is a single recorded interaction between a user and a product.
// Events feed trending velocity, browsing/purchase history recommendations,
// and co-purchase signals.
type UserEvent struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Type      EventType `json:"type" db:"event_type"`
	Source    string    `json:"source,omitempty" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserProfile carries the personalization signals a user has declared.
// SkinType is empty when the user never declared one.
type UserProfile struct {
	UserID    string    `json:"user_id" db:"user_id"`
	SkinType  string    `json:"skin_type" db:"skin_type"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
