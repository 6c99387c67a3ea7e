// Package cart holds shopping-cart line items keyed by product id.
//
// A Store is safe for concurrent use; every mutation runs under one lock so
// no caller observes a half-applied change. Lines are snapshots taken when a
// product is added and are never re-joined with the live catalog.
package cart

import (
	"errors"
	"sync"
)

// MaxQuantity is the largest quantity a single line may hold.
const MaxQuantity = 999

// ErrInvalidQuantity is returned when a quantity is below one or a line
// would exceed MaxQuantity.
var ErrInvalidQuantity = errors.New("cart: quantity must be between 1 and 999")

// Product is the information a line snapshots when it is created.
type Product struct {
	ID       string
	Name     string
	Price    int64
	ImageURL string
}

// Item is one cart line.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
}

// LineTotal is Price × Quantity.
func (i Item) LineTotal() int64 { return i.Price * int64(i.Quantity) }

// Store is an ordered set of lines.
type Store struct {
	mu    sync.RWMutex
	items []Item
}

// New returns a Store seeded with items. Lines with a non-positive quantity
// or an empty product id are dropped, duplicates are merged and quantities
// are capped at MaxQuantity.
func New(items ...Item) *Store {
	s := &Store{}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			continue
		}
		if i := s.indexOf(it.ProductID); i >= 0 {
			s.items[i].Quantity = min(s.items[i].Quantity+min(it.Quantity, MaxQuantity), MaxQuantity)
			continue
		}
		it.Quantity = min(it.Quantity, MaxQuantity)
		s.items = append(s.items, it)
	}
	return s
}

// AddItem inserts p or, when p is already in the cart, increases its
// quantity. The stored name, price and image stay those of the first add.
//
// A quantity outside 1..MaxQuantity, or a merge that would take the line
// past MaxQuantity, fails with ErrInvalidQuantity and leaves the cart as is.
func (s *Store) AddItem(p Product, qty int) error {
	if qty <= 0 || qty > MaxQuantity {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(p.ID); i >= 0 {
		if s.items[i].Quantity > MaxQuantity-qty {
			return ErrInvalidQuantity
		}
		s.items[i].Quantity += qty
		return nil
	}
	s.items = append(s.items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  qty,
	})
	return nil
}

// UpdateQuantity sets the quantity of productID, removing the line when qty
// is zero or less. It reports whether the line existed. A quantity above
// MaxQuantity fails with ErrInvalidQuantity and changes nothing.
func (s *Store) UpdateQuantity(productID string, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return false, nil
	}
	switch {
	case qty > MaxQuantity:
		return true, ErrInvalidQuantity
	case qty <= 0:
		s.removeAt(i)
	default:
		s.items[i].Quantity = qty
	}
	return true, nil
}

// RemoveItem drops productID. It reports whether the line existed.
func (s *Store) RemoveItem(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	s.removeAt(i)
	return true
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// Total sums price × quantity over the current lines.
func (s *Store) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the line for productID.
func (s *Store) Item(productID string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.items[i], true
	}
	return Item{}, false
}

// Count is the sum of quantities, as shown on a cart badge.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Len is the number of distinct lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Summary is a consistent point-in-time view of the cart.
type Summary struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
	Total int64  `json:"total"`
}

// Summary reads items, count and total under a single lock.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{Items: make([]Item, len(s.items))}
	copy(sum.Items, s.items)
	for _, it := range s.items {
		sum.Count += it.Quantity
		sum.Total += it.LineTotal()
	}
	return sum
}

func (s *Store) indexOf(productID string) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}
