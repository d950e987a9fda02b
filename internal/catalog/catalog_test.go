package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

type fakeLister struct {
	items []domain.Item
	err   error
	calls int
}

func (f *fakeLister) ListItems(_ context.Context) ([]domain.Item, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func testItems() []domain.Item {
	return []domain.Item{
		{ID: 1, Name: "Shirt", Price: decimal.NewFromInt(20), Stock: 2, Description: "linen shirt"},
		{ID: 2, Name: "Jeans", Price: decimal.NewFromInt(45), Stock: 9},
		{ID: 3, Name: "Scarf", Price: decimal.NewFromInt(12), Stock: 0, Description: "wool"},
	}
}

func TestLoadReplacesList(t *testing.T) {
	lister := &fakeLister{items: testItems()}
	c := New(lister, nil, time.Minute, nil)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := len(c.Items()); got != 3 {
		t.Fatalf("items = %d, want 3", got)
	}
	if c.LoadError() != "" {
		t.Fatalf("unexpected load error %q", c.LoadError())
	}

	lister.items = testItems()[:1]
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := len(c.Items()); got != 1 {
		t.Fatalf("items after reload = %d, want wholesale replacement to 1", got)
	}
}

func TestFailedLoadKeepsPreviousList(t *testing.T) {
	lister := &fakeLister{items: testItems()}
	c := New(lister, nil, time.Minute, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	lister.err = errors.New("connection refused")
	if err := c.Load(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	if got := len(c.Items()); got != 3 {
		t.Fatalf("previous list must survive a failed load, got %d items", got)
	}
	if c.LoadError() == "" {
		t.Fatalf("expected a retained load error message")
	}
}

func TestFilterMatchesNameAndDescription(t *testing.T) {
	lister := &fakeLister{items: testItems()}
	c := New(lister, nil, time.Minute, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := c.Filter("WOOL"); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("description filter failed: %+v", got)
	}
	all := c.Filter("")
	if len(all) != 3 {
		t.Fatalf("empty term must match everything")
	}
	// Sorted by stock descending.
	if all[0].ID != 2 || all[2].ID != 3 {
		t.Fatalf("expected stock-descending order, got %+v", all)
	}
}

func TestGetByID(t *testing.T) {
	lister := &fakeLister{items: testItems()}
	c := New(lister, nil, time.Minute, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	item, ok := c.Get(2)
	if !ok || item.Name != "Jeans" {
		t.Fatalf("get(2) = %+v, %t", item, ok)
	}
	if _, ok := c.Get(99); ok {
		t.Fatalf("expected miss for unknown id")
	}
}
