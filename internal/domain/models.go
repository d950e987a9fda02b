package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The upstream shop backend exchanges monetary values as plain JSON
	// numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item is an immutable catalog snapshot row fetched from the upstream
// backend. Stock reflects the quantity known at the last catalog load.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"quantity"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// CartLine pairs a catalog item with a pending-sale quantity.
// Invariant: 1 <= Qty <= Item.Stock.
type CartLine struct {
	Item Item `json:"item"`
	Qty  int  `json:"qty"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

type Bank string

const (
	BankTBC Bank = "TBC"
	BankBOG Bank = "BOG"
)

func ParseBank(raw string) (Bank, error) {
	switch Bank(raw) {
	case BankTBC:
		return BankTBC, nil
	case BankBOG:
		return BankBOG, nil
	default:
		return "", fmt.Errorf("unknown bank %q", raw)
	}
}

// Label returns the customer-facing bank name.
func (b Bank) Label() string {
	switch b {
	case BankTBC:
		return "TBC Bank"
	case BankBOG:
		return "Bank of Georgia"
	default:
		return string(b)
	}
}

// PaymentKind is the closed set of payment selector states. CardPending is
// transient: a bank picker is open but no bank has been committed yet.
type PaymentKind string

const (
	PaymentCash        PaymentKind = "cash"
	PaymentCardPending PaymentKind = "card-pending"
	PaymentCard        PaymentKind = "card"
)

// PaymentSelection is the committed payment choice of a session.
type PaymentSelection struct {
	Kind PaymentKind `json:"kind"`
	Bank Bank        `json:"bank,omitempty"`
}

// Wire payment method strings used by the upstream backend.
const (
	WirePaymentCash    = "cash"
	WirePaymentCardTBC = "card-TBC"
	WirePaymentCardBOG = "card-BOG"
)

// WireMethod maps a committed selection to its wire string. CardPending has
// no wire form; callers must block submission first.
func (p PaymentSelection) WireMethod() (string, error) {
	switch p.Kind {
	case PaymentCash:
		return WirePaymentCash, nil
	case PaymentCard:
		switch p.Bank {
		case BankTBC:
			return WirePaymentCardTBC, nil
		case BankBOG:
			return WirePaymentCardBOG, nil
		default:
			return "", fmt.Errorf("card payment without a bank")
		}
	default:
		return "", fmt.Errorf("payment selection %q is not committed", p.Kind)
	}
}

// NoticeTone distinguishes transient info banners from error banners.
type NoticeTone string

const (
	NoticeInfo  NoticeTone = "info"
	NoticeError NoticeTone = "error"
)

type Notice struct {
	Text string     `json:"text"`
	Tone NoticeTone `json:"tone"`
}

// Totals is the derived pricing of a cart. Discount is always zero on the
// terminal; non-standard discounts go through the offer approval flow and
// never feed back into a live cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// SaleLine is the wire shape of one sold line in POST /sales.
type SaleLine struct {
	ID    int64           `json:"id"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
	Name  string          `json:"name"`
}

// SaleRequest is sent to the upstream backend to finalize a sale. Total
// carries the full computed precision, not the 2dp display rounding.
type SaleRequest struct {
	Items         []SaleLine      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
}

// Sale is the upstream record created for a finalized cart.
type Sale struct {
	ID            int64           `json:"id"`
	Items         []SaleLine      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountAmount     DiscountType = "amount"
)

// RequestedDiscount packages the cashier's ask for admin approval.
// CartTotal snapshots the live computed total at submission time.
type RequestedDiscount struct {
	Type      DiscountType    `json:"type"`
	Value     decimal.Decimal `json:"value"`
	Notes     string          `json:"notes,omitempty"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

type OfferItem struct {
	ID    int64           `json:"id"`
	Qty   int             `json:"qty"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OfferRequest is sent to the upstream backend as a pending approval.
type OfferRequest struct {
	FromShop          string            `json:"from_shop"`
	Items             []OfferItem       `json:"items"`
	RequestedDiscount RequestedDiscount `json:"requested_discount"`
}

type Offer struct {
	ID                int64             `json:"id"`
	FromShop          string            `json:"from_shop"`
	Items             []OfferItem       `json:"items"`
	RequestedDiscount RequestedDiscount `json:"requested_discount"`
	Status            string            `json:"status"`
	CreatedAt         string            `json:"created_at,omitempty"`
}

const (
	OfferStatusPending  = "pending"
	OfferStatusApproved = "approved"
	OfferStatusRejected = "rejected"
)

// ShopSettings mirrors the upstream GET /settings payload.
type ShopSettings struct {
	TaxRatePercent decimal.Decimal `json:"taxRate"`
	Currency       string          `json:"currency,omitempty"`
}

// OfferForm carries the cashier's discount-request input.
type OfferForm struct {
	FromShop     string          `json:"from_shop"`
	DiscountType DiscountType    `json:"discount_type"`
	Value        decimal.Decimal `json:"discount_value"`
	Notes        string          `json:"notes,omitempty"`
}

// SaleRecord is the terminal's local journal entry for a completed sale,
// kept for end-of-day reconciliation against the upstream backend.
type SaleRecord struct {
	ID            string          `json:"id"`
	TerminalID    string          `json:"terminal_id"`
	UpstreamID    int64           `json:"upstream_id"`
	Lines         []SaleLine      `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CashierName   string          `json:"cashier_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OfferRecord is the terminal's local journal entry for a submitted
// discount request.
type OfferRecord struct {
	ID         string          `json:"id"`
	TerminalID string          `json:"terminal_id"`
	UpstreamID int64           `json:"upstream_id"`
	FromShop   string          `json:"from_shop"`
	Type       DiscountType    `json:"type"`
	Value      decimal.Decimal `json:"value"`
	CartTotal  decimal.Decimal `json:"cart_total"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type OperatorCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type OperatorUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}
