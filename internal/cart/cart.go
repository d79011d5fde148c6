package cart

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product's entry in the cart. Name, price, and image are
// cached copies taken when the item was added; the catalog stays authoritative.
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageURL  *string         `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
}

// ProductRef carries the catalog fields cached onto a new line item.
type ProductRef struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	ImageURL  *string
}

// Snapshot is the read-only view handed to callers. Totals always match the
// items at the instant the snapshot was taken.
type Snapshot struct {
	Items      []LineItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Store holds the line items of a single cart. One line item per product id;
// insertion order is preserved for display stability.
type Store struct {
	items []LineItem
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{}
}

// Restore rebuilds a store from serialized line items. Malformed or empty
// data yields an empty cart, never an error.
func Restore(data []byte) *Store {
	if len(data) == 0 {
		return NewStore()
	}
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return NewStore()
	}
	clean := make([]LineItem, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil || item.Quantity < 1 {
			continue
		}
		if item.UnitPrice.IsNegative() {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		clean = append(clean, item)
	}
	return &Store{items: clean}
}

// Serialize returns the line items as JSON for persistence.
func (s *Store) Serialize() ([]byte, error) {
	if len(s.items) == 0 {
		return json.Marshal([]LineItem{})
	}
	return json.Marshal(s.items)
}

// AddItem increments the quantity when the product is already present,
// otherwise appends a new line item with quantity 1.
func (s *Store) AddItem(product ProductRef) {
	for i := range s.items {
		if s.items[i].ProductID == product.ProductID {
			s.items[i].Quantity++
			return
		}
	}
	s.items = append(s.items, LineItem{
		ProductID: product.ProductID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		ImageURL:  product.ImageURL,
		Quantity:  1,
	})
}

// RemoveItem deletes the line item if present. Absent ids are a no-op.
func (s *Store) RemoveItem(productID uuid.UUID) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces the line item's quantity. Zero or negative values
// remove the line item entirely.
func (s *Store) SetQuantity(productID uuid.UUID, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			return
		}
	}
}

// Clear removes all line items.
func (s *Store) Clear() {
	s.items = nil
}

// IsEmpty reports whether the cart has no line items.
func (s *Store) IsEmpty() bool {
	return len(s.items) == 0
}

// Snapshot returns the current items plus derived totals.
func (s *Store) Snapshot() Snapshot {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)

	totalItems := 0
	totalPrice := decimal.Zero
	for _, item := range items {
		totalItems += item.Quantity
		totalPrice = totalPrice.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return Snapshot{
		Items:      items,
		TotalItems: totalItems,
		TotalPrice: totalPrice,
	}
}
