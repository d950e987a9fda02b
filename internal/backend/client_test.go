package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

func TestListItemsDecodesWireShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Shirt","price":19.99,"quantity":4,"description":"linen"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	items, err := client.ListItems(context.Background())
	if err != nil {
		t.Fatalf("list items failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].Stock != 4 || !items[0].Price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("unexpected item %+v", items[0])
	}
}

func TestCreateSaleSendsBearerTokenAndNumbers(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer svc-token" {
			t.Fatalf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"total":47.2,"payment_method":"card-TBC"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "svc-token")
	sale, err := client.CreateSale(context.Background(), domain.SaleRequest{
		Items:         []domain.SaleLine{{ID: 1, Qty: 2, Price: decimal.NewFromInt(20), Name: "Shirt"}},
		Total:         decimal.RequireFromString("47.2"),
		PaymentMethod: domain.WirePaymentCardTBC,
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if sale.ID != 7 {
		t.Fatalf("sale id = %d, want 7", sale.ID)
	}
	// Totals must travel as JSON numbers, not strings.
	if _, ok := captured["total"].(float64); !ok {
		t.Fatalf("total encoded as %T, want number", captured["total"])
	}
}

func TestErrorBodyMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"insufficient stock for Shirt"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.CreateSale(context.Background(), domain.SaleRequest{PaymentMethod: domain.WirePaymentCash})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := Message(err, "fallback"); got != "insufficient stock for Shirt" {
		t.Fatalf("message = %q", got)
	}
}

func TestMessageFallsBackOnBlankBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.ListItems(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := Message(err, "Unable to load inventory."); got != "Unable to load inventory." {
		t.Fatalf("message = %q", got)
	}
}
