package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
	"github.com/Khristo19/clothing-shop-pos/internal/journal"
)

func saleRecord(terminal string) domain.SaleRecord {
	return domain.SaleRecord{
		TerminalID: terminal,
		Lines: []domain.SaleLine{
			{ID: 1, Qty: 2, Price: decimal.NewFromInt(20), Name: "Shirt"},
		},
		Total:         decimal.RequireFromString("47.2"),
		PaymentMethod: "cash",
	}
}

func TestCreateSaleAssignsIDAndTimestamp(t *testing.T) {
	store := New()

	saved, err := store.CreateSale(context.Background(), saleRecord("till-1"))
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected generated id")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestCreateSaleValidation(t *testing.T) {
	store := New()

	if _, err := store.CreateSale(context.Background(), domain.SaleRecord{TerminalID: "till-1"}); !errors.Is(err, journal.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for empty lines, got %v", err)
	}
	rec := saleRecord("")
	if _, err := store.CreateSale(context.Background(), rec); !errors.Is(err, journal.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for missing terminal, got %v", err)
	}
}

func TestListSalesNewestFirstWithLimit(t *testing.T) {
	store := New()
	for i := 0; i < 5; i++ {
		rec := saleRecord("till-1")
		rec.ID = fmt.Sprintf("sale_%d", i)
		if _, err := store.CreateSale(context.Background(), rec); err != nil {
			t.Fatalf("create sale %d failed: %v", i, err)
		}
	}

	sales, err := store.ListSales(context.Background(), 3)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 3 {
		t.Fatalf("expected 3 sales, got %d", len(sales))
	}
	if sales[0].ID != "sale_4" || sales[2].ID != "sale_2" {
		t.Fatalf("expected newest first, got %s..%s", sales[0].ID, sales[2].ID)
	}
}

func TestCreateOfferValidation(t *testing.T) {
	store := New()

	rec := domain.OfferRecord{
		TerminalID: "till-1",
		FromShop:   "POS Front Desk",
		Type:       domain.DiscountPercentage,
		Value:      decimal.NewFromInt(10),
		CartTotal:  decimal.NewFromInt(40),
	}
	saved, err := store.CreateOffer(context.Background(), rec)
	if err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected generated id")
	}

	rec.FromShop = ""
	if _, err := store.CreateOffer(context.Background(), rec); !errors.Is(err, journal.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestUserLifecycle(t *testing.T) {
	store := New()

	user := domain.UserAccount{Username: "ana", Password: "hash1", Role: "cashier", Active: true}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if err := store.CreateUser(context.Background(), user); !errors.Is(err, journal.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := store.UpdateUserPassword(context.Background(), "ana", "hash2"); err != nil {
		t.Fatalf("update password failed: %v", err)
	}
	if err := store.UpdateUserPassword(context.Background(), "ghost", "hash2"); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 || users[0].Password != "hash2" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestNewSeededCreatesDefaultOperators(t *testing.T) {
	store := NewSeeded()

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	roles := map[string]string{}
	for _, u := range users {
		roles[u.Username] = u.Role
		if u.Password == "" {
			t.Fatalf("seed user %s has empty password hash", u.Username)
		}
	}
	if roles["admin"] != "admin" || roles["cashier"] != "cashier" {
		t.Fatalf("unexpected seed roles: %v", roles)
	}
}
