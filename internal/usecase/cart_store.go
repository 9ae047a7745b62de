package usecase

import (
	"sync"

	"storefront-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartStore is one shopping cart. Items keep insertion order, there is at
// most one line per product id, and the totals are recomputed inside the same
// critical section as every mutation.
type CartStore struct {
	mu         sync.RWMutex
	items      []domain.LineItem
	totalPrice decimal.Decimal
	totalCount int
	observers  []domain.CartObserver
}

func NewCartStore(observers ...domain.CartObserver) *CartStore {
	return &CartStore{
		items:      []domain.LineItem{},
		totalPrice: decimal.Zero,
		observers:  observers,
	}
}

// AddItem adds quantity units of product. An existing line keeps its name and
// price and only grows in quantity. A zero quantity means one; a negative
// quantity or price is ignored.
func (s *CartStore) AddItem(product domain.Product, quantity int) {
	s.AddItemCapped(product, quantity, 0)
}

// AddItemCapped is AddItem with a per-line limit checked under the same lock
// as the mutation. It reports false, leaving the cart untouched, when the
// line would end up above limit. limit <= 0 means no limit.
func (s *CartStore) AddItemCapped(product domain.Product, quantity, limit int) bool {
	if quantity == 0 {
		quantity = domain.DefaultAddQuantity
	}
	if quantity < 0 || product.Price.IsNegative() {
		return true
	}

	accepted := true
	s.mutate(domain.CartOpAdd, func() bool {
		i := s.indexOf(product.ID)
		current := 0
		if i >= 0 {
			current = s.items[i].Quantity
		}
		if limit > 0 && current+quantity > limit {
			accepted = false
			return false
		}
		if i >= 0 {
			s.items[i].Quantity += quantity
			return true
		}
		s.items = append(s.items, domain.LineItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			Quantity: quantity,
		})
		return true
	})
	return accepted
}

// RemoveItem drops the line for id. Unknown ids are a no-op.
func (s *CartStore) RemoveItem(id int64) {
	s.mutate(domain.CartOpRemove, func() bool {
		return s.removeLocked(id)
	})
}

// UpdateQuantity sets the absolute quantity for id; quantity <= 0 removes it.
func (s *CartStore) UpdateQuantity(id int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(id)
		return
	}
	s.mutate(domain.CartOpUpdate, func() bool {
		i := s.indexOf(id)
		if i < 0 || s.items[i].Quantity == quantity {
			return false
		}
		s.items[i].Quantity = quantity
		return true
	})
}

// Increase adds one unit to an existing line.
func (s *CartStore) Increase(id int64) {
	s.step(id, 1, 0)
}

// IncreaseCapped is Increase with a per-line limit; it reports false when the
// line already holds limit units. limit <= 0 means no limit.
func (s *CartStore) IncreaseCapped(id int64, limit int) bool {
	return s.step(id, 1, limit)
}

// Decrease takes one unit off an existing line, removing it at zero.
func (s *CartStore) Decrease(id int64) {
	s.step(id, -1, 0)
}

func (s *CartStore) step(id int64, delta, limit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return true
	}
	next := s.items[i].Quantity + delta
	if limit > 0 && delta > 0 && next > limit {
		return false
	}
	op := domain.CartOpUpdate
	if next > 0 {
		s.items[i].Quantity = next
	} else {
		s.removeLocked(id)
		op = domain.CartOpRemove
	}
	s.commitLocked(op)
	return true
}

// ClearCart empties the cart.
func (s *CartStore) ClearCart() {
	s.mutate(domain.CartOpClear, func() bool {
		if len(s.items) == 0 {
			return false
		}
		s.items = []domain.LineItem{}
		return true
	})
}

// State returns a copy of the items together with the totals derived from them.
func (s *CartStore) State() domain.CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *CartStore) Items() []domain.LineItem {
	return s.State().Items
}

func (s *CartStore) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalPrice
}

func (s *CartStore) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalCount
}

// mutate runs fn under the write lock; when fn reports a change the totals
// are recomputed and observers notified before the lock is released.
func (s *CartStore) mutate(op domain.CartOp, fn func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn() {
		return
	}
	s.commitLocked(op)
}

func (s *CartStore) commitLocked(op domain.CartOp) {
	total := decimal.Zero
	count := 0
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
		count += item.Quantity
	}
	s.totalPrice = total
	s.totalCount = count

	if len(s.observers) == 0 {
		return
	}
	state := s.stateLocked()
	for _, observe := range s.observers {
		observe(op, state)
	}
}

func (s *CartStore) removeLocked(id int64) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return true
}

func (s *CartStore) indexOf(id int64) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *CartStore) stateLocked() domain.CartState {
	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)
	return domain.CartState{
		Items:      items,
		TotalPrice: s.totalPrice,
		TotalCount: s.totalCount,
	}
}

// LogCartChanges returns an observer that logs the cart after every change.
func LogCartChanges(l *zerolog.Logger) domain.CartObserver {
	return func(op domain.CartOp, state domain.CartState) {
		l.Info().
			Str("op", string(op)).
			Int("items", len(state.Items)).
			Int("total_items", state.TotalCount).
			Str("total_price", state.TotalPrice.StringFixed(2)).
			Msg("Cart updated")
	}
}
