// Package procurement holds the property cart: the listings a user intends
// to buy, in the order they were added.
package procurement

import (
	"sync"
	"time"

	"nestlink/server/internal/models"
)

type Store struct {
	mu    sync.RWMutex
	items []models.ProcurementItem
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Add appends listing unless an item with the same listing id is already
// present. It reports whether the cart changed.
func (s *Store) Add(listing models.Listing) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(listing.ID) >= 0 {
		return false
	}
	s.items = append(s.items, models.ProcurementItem{
		Property: listing.Clone(),
		AddedAt:  s.now(),
	})
	return true
}

// Remove drops the item for listingID. Removing an absent item is a no-op.
func (s *Store) Remove(listingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(listingID)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return true
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

func (s *Store) Contains(listingID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(listingID) >= 0
}

// Items returns a copy of the cart in insertion order.
func (s *Store) Items() []models.ProcurementItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.ProcurementItem, len(s.items))
	for i, item := range s.items {
		items[i] = models.ProcurementItem{Property: item.Property.Clone(), AddedAt: item.AddedAt}
	}
	return items
}

// Total is the sum of listing prices. Fees are computed by pricing.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		total += item.Property.Price
	}
	return total
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) indexOf(listingID string) int {
	for i, item := range s.items {
		if item.Property.ID == listingID {
			return i
		}
	}
	return -1
}
