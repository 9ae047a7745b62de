package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// --- Cart Entities ---

// Product is what the storefront offers; adding one to a cart creates a LineItem.
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type LineItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price × quantity for the line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// CartState is a consistent view of a cart: items in insertion order plus
// totals derived from exactly those items.
type CartState struct {
	Items      []LineItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	TotalCount int             `json:"totalCount"`
}

type CartOp string

const (
	CartOpAdd    CartOp = "add"
	CartOpUpdate CartOp = "update"
	CartOpRemove CartOp = "remove"
	CartOpClear  CartOp = "clear"
)

// CartObserver is called after every mutation that changed the cart. It runs
// while the cart is locked and must not call back into it.
type CartObserver func(op CartOp, state CartState)

type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]Product, error)
}
