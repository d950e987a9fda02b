// Package session owns the per-terminal checkout state: one cart, one
// payment selector, one notice banner, and the in-flight guards around
// sale and offer submission. All durable effects go through the upstream
// backend; the local journal only mirrors successes for reconciliation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Khristo19/clothing-shop-pos/internal/backend"
	"github.com/Khristo19/clothing-shop-pos/internal/cart"
	"github.com/Khristo19/clothing-shop-pos/internal/domain"
	"github.com/Khristo19/clothing-shop-pos/internal/journal"
	"github.com/Khristo19/clothing-shop-pos/internal/notice"
	"github.com/Khristo19/clothing-shop-pos/internal/payment"
	"github.com/Khristo19/clothing-shop-pos/internal/pricing"
)

var (
	// ErrEmptyCart blocks checkout and offer actions on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrBankNotChosen blocks checkout while the bank picker is open.
	ErrBankNotChosen = errors.New("bank not chosen")
	// ErrSubmitInFlight rejects a second submission while one is running.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrUnknownItem reports a cart mutation against an id the catalog
	// does not hold.
	ErrUnknownItem = errors.New("unknown item")
	// ErrNoOfferForm reports an offer submission without an open form.
	ErrNoOfferForm = errors.New("no offer form open")
)

const (
	msgEmptyCartSale   = "Add at least one item before saving the order."
	msgEmptyCartOffer  = "Add items to the cart before requesting a discount."
	msgBankRequired    = "Select a bank to process the card payment."
	msgSaleCompleted   = "Sale completed. Ready for the next customer!"
	msgSaleFailed      = "Could not save the sale."
	msgOfferSent       = "Offer sent to admin for approval."
	msgOfferFailed     = "Could not submit offer."
	msgShopLabelNeeded = "Enter the shop label before submitting."
	msgNegativeValue   = "Discount value cannot be negative."
)

// Backend is the slice of the upstream client a session needs.
type Backend interface {
	CreateSale(ctx context.Context, req domain.SaleRequest) (*domain.Sale, error)
	CreateOffer(ctx context.Context, req domain.OfferRequest) (*domain.Offer, error)
}

// Inventory is the slice of the catalog cache a session needs.
type Inventory interface {
	Get(id int64) (domain.Item, bool)
	Load(ctx context.Context) error
}

// TaxRater yields the current tax rate in percentage units.
type TaxRater interface {
	TaxRate(ctx context.Context) decimal.Decimal
}

type Config struct {
	Backend   Backend
	Catalog   Inventory
	Settings  TaxRater
	Journal   journal.Repository
	ShopLabel string
	InfoTTL   time.Duration
	ErrorTTL  time.Duration
}

type Manager struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[string]*Session
}

func NewManager(cfg Config) *Manager {
	if cfg.InfoTTL <= 0 {
		cfg.InfoTTL = 2500 * time.Millisecond
	}
	if cfg.ErrorTTL <= 0 {
		cfg.ErrorTTL = 4 * time.Second
	}
	if cfg.ShopLabel == "" {
		cfg.ShopLabel = "POS Front Desk"
	}
	return &Manager{cfg: cfg, sessions: map[string]*Session{}}
}

// Session returns the session for a terminal, creating it on first use.
func (m *Manager) Session(terminalID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[terminalID]; ok {
		return s
	}
	s := &Session{
		terminalID: terminalID,
		cfg:        m.cfg,
		cart:       cart.New(),
		selector:   payment.NewSelector(),
		banner:     notice.NewBanner(),
	}
	m.sessions[terminalID] = s
	return s
}

// Close tears down one terminal session and drops it from the manager.
func (m *Manager) Close(terminalID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[terminalID]; ok {
		s.banner.Close()
		delete(m.sessions, terminalID)
	}
}

// CloseAll tears down every session. Used on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.banner.Close()
		delete(m.sessions, id)
	}
}

type Session struct {
	terminalID string
	cfg        Config

	mu         sync.Mutex
	cart       *cart.Cart
	selector   *payment.Selector
	offerForm  *domain.OfferForm
	submitting bool
	cashier    string

	banner *notice.Banner
}

// View is the full session state rendered for the terminal UI.
type View struct {
	TerminalID string                  `json:"terminal_id"`
	Lines      []domain.CartLine       `json:"lines"`
	TotalItems int                     `json:"total_items"`
	Totals     domain.Totals           `json:"totals"`
	Payment    domain.PaymentSelection `json:"payment"`
	OfferForm  *domain.OfferForm       `json:"offer_form,omitempty"`
	Notice     *domain.Notice          `json:"notice,omitempty"`
	Submitting bool                    `json:"submitting"`
}

// SetCashier records who is operating the terminal, for journal entries.
func (s *Session) SetCashier(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cashier = name
}

// AddItem puts one unit of a catalog item into the cart.
func (s *Session) AddItem(itemID int64) error {
	item, ok := s.cfg.Catalog.Get(itemID)
	if !ok {
		return fmt.Errorf("item %d: %w", itemID, ErrUnknownItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.AddItem(item); err != nil {
		s.showCartError(item, err)
		return err
	}
	return nil
}

// Increment raises a cart line by one unit.
func (s *Session) Increment(itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Increment(itemID); err != nil {
		if item, ok := s.cfg.Catalog.Get(itemID); ok {
			s.showCartError(item, err)
		}
		return err
	}
	return nil
}

// Decrement lowers a cart line by one unit, never below one.
func (s *Session) Decrement(itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Decrement(itemID)
}

// Remove drops a cart line entirely.
func (s *Session) Remove(itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Remove(itemID)
}

// ClearCart empties the cart and resets the payment selection to cash.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.selector.Reset()
	s.offerForm = nil
}

func (s *Session) SelectCash() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector.SelectCash()
}

func (s *Session) SelectCard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector.SelectCard()
}

func (s *Session) ConfirmBank(bank domain.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selector.ConfirmBank(bank)
}

func (s *Session) CancelBankSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selector.CancelBankSelection()
}

// Totals computes the live pricing of the cart at the current tax rate.
func (s *Session) Totals(ctx context.Context) domain.Totals {
	rate := s.cfg.Settings.TaxRate(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Calculate(s.cart.Lines(), rate)
}

// View renders the whole session state in one shot.
func (s *Session) View(ctx context.Context) View {
	rate := s.cfg.Settings.TaxRate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.cart.Lines()
	var form *domain.OfferForm
	if s.offerForm != nil {
		copied := *s.offerForm
		form = &copied
	}
	return View{
		TerminalID: s.terminalID,
		Lines:      lines,
		TotalItems: s.cart.TotalItems(),
		Totals:     pricing.Calculate(lines, rate),
		Payment:    s.selector.State(),
		OfferForm:  form,
		Notice:     s.banner.Current(),
		Submitting: s.submitting,
	}
}

// Notice returns the currently visible banner, if any.
func (s *Session) Notice() *domain.Notice {
	return s.banner.Current()
}

// SubmitSale finalizes the cart against the upstream backend. Exactly one
// submission runs at a time; the cart survives any failure untouched.
func (s *Session) SubmitSale(ctx context.Context) (*domain.Sale, error) {
	rate := s.cfg.Settings.TaxRate(ctx)

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		s.banner.Show(msgEmptyCartSale, domain.NoticeError, s.cfg.ErrorTTL)
		return nil, ErrEmptyCart
	}
	selection := s.selector.State()
	method, err := selection.WireMethod()
	if err != nil {
		// The picker stays open so the cashier lands back on the
		// bank choice.
		s.mu.Unlock()
		s.banner.Show(msgBankRequired, domain.NoticeError, s.cfg.ErrorTTL)
		return nil, ErrBankNotChosen
	}

	lines := s.cart.Lines()
	totals := pricing.Calculate(lines, rate)
	req := domain.SaleRequest{
		Items:         saleLines(lines),
		Total:         totals.Total,
		PaymentMethod: method,
	}
	cashier := s.cashier
	s.submitting = true
	s.mu.Unlock()

	sale, err := s.cfg.Backend.CreateSale(ctx, req)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.mu.Unlock()
		s.banner.Show(backend.Message(err, msgSaleFailed), domain.NoticeError, s.cfg.ErrorTTL)
		return nil, err
	}
	s.cart.Clear()
	s.selector.Reset()
	s.offerForm = nil
	s.mu.Unlock()

	s.banner.Show(msgSaleCompleted, domain.NoticeInfo, s.cfg.InfoTTL)
	s.journalSale(ctx, sale, req, cashier)

	// Refresh stock snapshots now that the upstream decremented them.
	if loadErr := s.cfg.Catalog.Load(ctx); loadErr != nil {
		log.Printf("[session %s] WARN: catalog reload after sale failed: %v", s.terminalID, loadErr)
	}
	return sale, nil
}

// OpenOfferForm starts a discount request pre-filled with the shop label
// and a 10 percent default, mirroring the front-desk workflow.
func (s *Session) OpenOfferForm() (*domain.OfferForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart.IsEmpty() {
		s.banner.Show(msgEmptyCartOffer, domain.NoticeError, s.cfg.ErrorTTL)
		return nil, ErrEmptyCart
	}
	s.offerForm = &domain.OfferForm{
		FromShop:     s.cfg.ShopLabel,
		DiscountType: domain.DiscountPercentage,
		Value:        decimal.NewFromInt(10),
	}
	copied := *s.offerForm
	return &copied, nil
}

// CloseOfferForm discards the open form without submitting.
func (s *Session) CloseOfferForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offerForm = nil
}

// SubmitOffer sends the discount request upstream for admin approval. The
// cart is snapshotted into the request but never mutated; the cashier keeps
// selling while the admin decides.
func (s *Session) SubmitOffer(ctx context.Context, form domain.OfferForm) (*domain.Offer, error) {
	rate := s.cfg.Settings.TaxRate(ctx)

	s.mu.Lock()
	if s.offerForm == nil {
		s.mu.Unlock()
		return nil, ErrNoOfferForm
	}
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		s.banner.Show(msgEmptyCartOffer, domain.NoticeError, s.cfg.ErrorTTL)
		return nil, ErrEmptyCart
	}
	if form.FromShop == "" {
		s.mu.Unlock()
		s.banner.Show(msgShopLabelNeeded, domain.NoticeError, s.cfg.ErrorTTL)
		return nil, fmt.Errorf("offer form: shop label required")
	}
	if form.Value.IsNegative() {
		s.mu.Unlock()
		s.banner.Show(msgNegativeValue, domain.NoticeError, s.cfg.ErrorTTL)
		return nil, fmt.Errorf("offer form: negative discount value")
	}
	if form.DiscountType != domain.DiscountPercentage && form.DiscountType != domain.DiscountAmount {
		s.mu.Unlock()
		return nil, fmt.Errorf("offer form: unknown discount type %q", form.DiscountType)
	}

	lines := s.cart.Lines()
	totals := pricing.Calculate(lines, rate)
	req := domain.OfferRequest{
		FromShop: form.FromShop,
		Items:    offerItems(lines),
		RequestedDiscount: domain.RequestedDiscount{
			Type:      form.DiscountType,
			Value:     form.Value,
			Notes:     form.Notes,
			CartTotal: totals.Total,
		},
	}
	s.mu.Unlock()

	offer, err := s.cfg.Backend.CreateOffer(ctx, req)
	if err != nil {
		s.banner.Show(backend.Message(err, msgOfferFailed), domain.NoticeError, s.cfg.ErrorTTL)
		return nil, err
	}

	s.mu.Lock()
	s.offerForm = nil
	s.mu.Unlock()

	s.banner.Show(msgOfferSent, domain.NoticeInfo, s.cfg.InfoTTL)
	s.journalOffer(ctx, offer, req)
	return offer, nil
}

func (s *Session) showCartError(item domain.Item, err error) {
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		s.banner.Show(fmt.Sprintf("%s is out of stock.", item.Name), domain.NoticeError, s.cfg.ErrorTTL)
	case errors.Is(err, cart.ErrStockExceeded):
		s.banner.Show(fmt.Sprintf("Only %d of %s available.", item.Stock, item.Name), domain.NoticeError, s.cfg.ErrorTTL)
	}
}

// journalSale mirrors a completed sale into the local journal. Best
// effort: a journal failure never fails the sale.
func (s *Session) journalSale(ctx context.Context, sale *domain.Sale, req domain.SaleRequest, cashier string) {
	if s.cfg.Journal == nil {
		return
	}
	rec := domain.SaleRecord{
		TerminalID:    s.terminalID,
		UpstreamID:    sale.ID,
		Lines:         req.Items,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		CashierName:   cashier,
	}
	if _, err := s.cfg.Journal.CreateSale(ctx, rec); err != nil {
		log.Printf("[session %s] WARN: sale journal write failed: %v", s.terminalID, err)
	}
}

func (s *Session) journalOffer(ctx context.Context, offer *domain.Offer, req domain.OfferRequest) {
	if s.cfg.Journal == nil {
		return
	}
	rec := domain.OfferRecord{
		TerminalID: s.terminalID,
		UpstreamID: offer.ID,
		FromShop:   req.FromShop,
		Type:       req.RequestedDiscount.Type,
		Value:      req.RequestedDiscount.Value,
		CartTotal:  req.RequestedDiscount.CartTotal,
		Notes:      req.RequestedDiscount.Notes,
	}
	if _, err := s.cfg.Journal.CreateOffer(ctx, rec); err != nil {
		log.Printf("[session %s] WARN: offer journal write failed: %v", s.terminalID, err)
	}
}

func saleLines(lines []domain.CartLine) []domain.SaleLine {
	out := make([]domain.SaleLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, domain.SaleLine{
			ID:    line.Item.ID,
			Qty:   line.Qty,
			Price: line.Item.Price,
			Name:  line.Item.Name,
		})
	}
	return out
}

func offerItems(lines []domain.CartLine) []domain.OfferItem {
	out := make([]domain.OfferItem, 0, len(lines))
	for _, line := range lines {
		out = append(out, domain.OfferItem{
			ID:    line.Item.ID,
			Qty:   line.Qty,
			Name:  line.Item.Name,
			Price: line.Item.Price,
		})
	}
	return out
}
