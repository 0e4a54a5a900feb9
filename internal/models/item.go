package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemStatus is the lifecycle state of an item. StatusConsumed is terminal.
type ItemStatus string

const (
	StatusFresh        ItemStatus = "fresh"
	StatusExpiringSoon ItemStatus = "expiring_soon"
	StatusExpired      ItemStatus = "expired"
	StatusConsumed     ItemStatus = "consumed"
)

const (
	DefaultCategory = "Other"
	DefaultUnit     = "pieces"
	MaxNotesLength  = 500
)

// AllowedCategories lists the accepted item categories.
var AllowedCategories = map[string]struct{}{
	"Dairy":      {},
	"Meat":       {},
	"Vegetables": {},
	"Fruits":     {},
	"Grains":     {},
	"Beverages":  {},
	"Snacks":     {},
	"Condiments": {},
	"Frozen":     {},
	"Bakery":     {},
	"Other":      {},
}

// AllowedUnits lists the accepted quantity units.
var AllowedUnits = map[string]struct{}{
	"pieces":  {},
	"kg":      {},
	"g":       {},
	"l":       {},
	"ml":      {},
	"packets": {},
}

// Item is a perishable good owned by exactly one user.
type Item struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"userId"`
	Name           string             `bson:"name" json:"name"`
	Category       string             `bson:"category" json:"category"`
	Quantity       float64            `bson:"quantity" json:"quantity"`
	Unit           string             `bson:"unit" json:"unit"`
	ExpiryDate     time.Time          `bson:"expiry_date" json:"expiryDate"`
	PurchaseDate   time.Time          `bson:"purchase_date" json:"purchaseDate"`
	Status         ItemStatus         `bson:"status" json:"status"`
	EstimatedPrice *float64           `bson:"estimated_price,omitempty" json:"estimatedPrice,omitempty"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Barcode        string             `bson:"barcode,omitempty" json:"barcode,omitempty"`
	ConsumedAt     *time.Time         `bson:"consumed_at,omitempty" json:"consumedAt,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`

	// Derived from ExpiryDate on every read and save, never stored.
	DaysUntilExpiry int `bson:"-" json:"daysUntilExpiry"`
}

// Price returns the estimated price, or 0 when none was recorded.
func (i *Item) Price() float64 {
	if i.EstimatedPrice == nil {
		return 0
	}
	return *i.EstimatedPrice
}

// IsConsumed reports whether the item reached its terminal state.
func (i *Item) IsConsumed() bool {
	return i.Status == StatusConsumed
}
