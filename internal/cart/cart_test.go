package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

func shirt(stock int) domain.Item {
	return domain.Item{ID: 1, Name: "Shirt", Price: decimal.NewFromInt(20), Stock: stock}
}

func TestAddOutOfStockItemRejected(t *testing.T) {
	c := New()
	if err := c.AddItem(shirt(0)); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("cart must stay empty after rejected add")
	}
}

func TestAddSameItemTwiceWithStockOne(t *testing.T) {
	c := New()
	item := shirt(1)
	if err := c.AddItem(item); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := c.AddItem(item); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded on second add, got %v", err)
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0].Qty != 1 {
		t.Fatalf("expected exactly one line with qty 1, got %+v", lines)
	}
}

func TestIncrementNeverExceedsStock(t *testing.T) {
	c := New()
	item := shirt(3)
	if err := c.AddItem(item); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		_ = c.Increment(item.ID)
	}
	if got := c.Lines()[0].Qty; got != 3 {
		t.Fatalf("qty = %d, want capped at stock 3", got)
	}
	if err := c.Increment(item.ID); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded at cap, got %v", err)
	}
}

func TestDecrementStopsAtOne(t *testing.T) {
	c := New()
	item := shirt(5)
	if err := c.AddItem(item); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := c.Decrement(item.ID); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if got := c.Lines()[0].Qty; got != 1 {
		t.Fatalf("qty = %d, want 1 (decrement never removes)", got)
	}
}

func TestRemoveDeletesLineRegardlessOfQty(t *testing.T) {
	c := New()
	item := shirt(5)
	_ = c.AddItem(item)
	_ = c.Increment(item.ID)
	_ = c.Increment(item.ID)
	if err := c.Remove(item.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart after remove")
	}
	if err := c.Remove(item.ID); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestTotalItemsSumsQuantities(t *testing.T) {
	c := New()
	a := shirt(5)
	b := domain.Item{ID: 2, Name: "Jeans", Price: decimal.NewFromInt(45), Stock: 2}
	_ = c.AddItem(a)
	_ = c.AddItem(a)
	_ = c.AddItem(b)
	if got := c.TotalItems(); got != 3 {
		t.Fatalf("total items = %d, want 3", got)
	}
	c.Clear()
	if c.TotalItems() != 0 || !c.IsEmpty() {
		t.Fatalf("expected cleared cart")
	}
}
