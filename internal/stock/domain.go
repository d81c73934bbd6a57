package stock

import (
	"errors"
	"time"
)

// ItemState enumerates stock item lifecycle states.
type ItemState string

const (
	// ItemStateStock is on-hand, unreserved inventory.
	ItemStateStock ItemState = "stock"
	// ItemStateReserved is held for a specific sales quote.
	ItemStateReserved ItemState = "reserved"
	// ItemStateConsumed has left the warehouse.
	ItemStateConsumed ItemState = "consumed"
)

// Item is a tracked quantity of an article held in inventory, possibly
// reserved for a specific sales quote (QuoteID != 0).
type Item struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	Quantity  float64   `json:"quantity"`
	State     ItemState `json:"state"`
	QuoteID   int64     `json:"quote_id,omitempty"`
	Lot       string    `json:"lot,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available reports whether the item is eligible as generic supply.
func (i Item) Available() bool {
	return i.State == ItemStateStock && i.Quantity > 0 && i.QuoteID == 0
}

var (
	// ErrItemNotFound indicates a missing stock item row.
	ErrItemNotFound = errors.New("stock: item not found")
	// ErrNotAvailable occurs when reserving an item that is not generic supply.
	ErrNotAvailable = errors.New("stock: item not available for reservation")
	// ErrInsufficientQuantity occurs when a reservation exceeds the lot quantity.
	ErrInsufficientQuantity = errors.New("stock: insufficient quantity")
	// ErrInvalidQuantity indicates a non-positive requested quantity.
	ErrInvalidQuantity = errors.New("stock: quantity must be positive")
)
