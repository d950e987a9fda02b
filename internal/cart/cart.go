// Package cart holds the ordered (item, quantity) lines of one cashier
// session. Quantities are bounded by the stock captured at catalog-load
// time; live stock is re-checked only by the upstream backend at sale time.
package cart

import (
	"errors"
	"fmt"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

var (
	// ErrOutOfStock rejects adding an item whose snapshot stock is zero.
	ErrOutOfStock = errors.New("out of stock")
	// ErrStockExceeded rejects raising a line past the snapshot stock.
	ErrStockExceeded = errors.New("stock exceeded")
	// ErrLineNotFound reports a mutation against an absent line.
	ErrLineNotFound = errors.New("cart line not found")
)

type Cart struct {
	lines []domain.CartLine
}

func New() *Cart {
	return &Cart{}
}

// AddItem appends a quantity-1 line, or bumps an existing line by one.
// Out-of-stock items and stock-capped lines are rejected without mutation.
func (c *Cart) AddItem(item domain.Item) error {
	if item.Stock <= 0 {
		return fmt.Errorf("%s: %w", item.Name, ErrOutOfStock)
	}
	for i := range c.lines {
		if c.lines[i].Item.ID != item.ID {
			continue
		}
		if c.lines[i].Qty >= item.Stock {
			return fmt.Errorf("%s: %w", item.Name, ErrStockExceeded)
		}
		c.lines[i].Qty++
		return nil
	}
	c.lines = append(c.lines, domain.CartLine{Item: item, Qty: 1})
	return nil
}

// Increment raises a line's quantity by one, capped at the item's stock.
func (c *Cart) Increment(itemID int64) error {
	line := c.find(itemID)
	if line == nil {
		return ErrLineNotFound
	}
	if line.Qty >= line.Item.Stock {
		return fmt.Errorf("%s: %w", line.Item.Name, ErrStockExceeded)
	}
	line.Qty++
	return nil
}

// Decrement lowers a line's quantity by one but never below one; removing
// the last unit is a distinct, explicit Remove.
func (c *Cart) Decrement(itemID int64) error {
	line := c.find(itemID)
	if line == nil {
		return ErrLineNotFound
	}
	if line.Qty > 1 {
		line.Qty--
	}
	return nil
}

// Remove deletes the line entirely regardless of quantity.
func (c *Cart) Remove(itemID int64) error {
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Clear empties all lines. Payment selection reset is the session's job.
func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalItems is the summed quantity across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.lines {
		total += line.Qty
	}
	return total
}

func (c *Cart) find(itemID int64) *domain.CartLine {
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			return &c.lines[i]
		}
	}
	return nil
}
