package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Khristo19/clothing-shop-pos/internal/cart"
	"github.com/Khristo19/clothing-shop-pos/internal/catalog"
	"github.com/Khristo19/clothing-shop-pos/internal/domain"
	"github.com/Khristo19/clothing-shop-pos/internal/journal"
	"github.com/Khristo19/clothing-shop-pos/internal/session"
)

type API struct {
	sessions      *session.Manager
	catalog       *catalog.Cache
	journal       journal.Repository
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
}

func New(sessions *session.Manager, cat *catalog.Cache, jrnl journal.Repository, auth *AuthManager, allowedOrigin string) *API {
	return &API{
		sessions:      sessions,
		catalog:       cat,
		journal:       jrnl,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

type actorKey struct{}

func withActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)

	mux.HandleFunc("/api/v1/catalog", a.requireAuth(a.handleCatalog, "cashier", "admin"))
	mux.HandleFunc("/api/v1/sessions/", a.requireAuth(a.handleSessionActions, "cashier", "admin"))

	mux.HandleFunc("/api/v1/journal/sales", a.requireAuth(a.handleJournalSales, "admin"))
	mux.HandleFunc("/api/v1/journal/offers", a.requireAuth(a.handleJournalOffers, "admin"))
	mux.HandleFunc("/api/v1/users/operators", a.requireAuth(a.handleOperators, "admin"))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(withActor(r.Context(), actor)))
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCatalog serves the cached item list (GET, with an optional ?q=
// filter) and forces a reload from the upstream backend (POST).
func (a *API) handleCatalog(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items := a.catalog.Filter(r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items":      items,
			"load_error": a.catalog.LoadError(),
		})
	case http.MethodPost:
		if err := a.catalog.Load(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, errors.New(a.catalog.LoadError()))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": a.catalog.Items()})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleSessionActions routes /api/v1/sessions/{terminal}/{action}. The
// terminal id names the session; mutations respond with the refreshed
// session view so the UI renders in one round trip.
func (a *API) handleSessionActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/sessions/"
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("terminal id required"))
		return
	}

	terminalID, action, _ := strings.Cut(tail, "/")
	s := a.sessions.Session(terminalID)
	if actor, ok := actorFromContext(r.Context()); ok {
		s.SetCashier(actor.Username)
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, s.View(r.Context()))
		case http.MethodDelete:
			a.sessions.Close(terminalID)
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeMethodNotAllowed(w)
		}
	case "totals":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, s.Totals(r.Context()))
	case "cart/items":
		a.handleCartAdd(w, r, s)
	case "cart/clear":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		s.ClearCart()
		writeJSON(w, http.StatusOK, s.View(r.Context()))
	case "payment/cash":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		s.SelectCash()
		writeJSON(w, http.StatusOK, s.View(r.Context()))
	case "payment/card":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		s.SelectCard()
		writeJSON(w, http.StatusOK, s.View(r.Context()))
	case "payment/bank":
		a.handleBankConfirm(w, r, s)
	case "payment/bank/cancel":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		if err := s.CancelBankSelection(); err != nil {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeJSON(w, http.StatusOK, s.View(r.Context()))
	case "checkout":
		a.handleCheckout(w, r, s)
	case "offer/open":
		a.handleOfferOpen(w, r, s)
	case "offer/close":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		s.CloseOfferForm()
		writeJSON(w, http.StatusOK, s.View(r.Context()))
	case "offer/submit":
		a.handleOfferSubmit(w, r, s)
	default:
		a.handleCartLineAction(w, r, s, action)
	}
}

func (a *API) handleCartAdd(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		ItemID int64 `json:"item_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.AddItem(req.ItemID); err != nil {
		writeError(w, cartErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.View(r.Context()))
}

// handleCartLineAction routes cart/items/{id} and
// cart/items/{id}/{increment|decrement}.
func (a *API) handleCartLineAction(w http.ResponseWriter, r *http.Request, s *session.Session, action string) {
	const linePrefix = "cart/items/"
	if !strings.HasPrefix(action, linePrefix) {
		writeError(w, http.StatusNotFound, errors.New("unknown session action"))
		return
	}

	rawID, verb, _ := strings.Cut(strings.TrimPrefix(action, linePrefix), "/")
	itemID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid item id"))
		return
	}

	switch verb {
	case "":
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w)
			return
		}
		err = s.Remove(itemID)
	case "increment":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		err = s.Increment(itemID)
	case "decrement":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		err = s.Decrement(itemID)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown cart action"))
		return
	}

	if err != nil {
		writeError(w, cartErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.View(r.Context()))
}

func (a *API) handleBankConfirm(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Bank string `json:"bank"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	bank, err := domain.ParseBank(req.Bank)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.ConfirmBank(bank); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View(r.Context()))
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	sale, err := s.SubmitSale(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyCart), errors.Is(err, session.ErrBankNotChosen):
			writeJSON(w, http.StatusUnprocessableEntity, s.View(r.Context()))
		case errors.Is(err, session.ErrSubmitInFlight):
			writeError(w, http.StatusConflict, err)
		default:
			// Upstream rejection or transport failure; the notice
			// carries the display message.
			writeJSON(w, http.StatusBadGateway, s.View(r.Context()))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sale": sale,
		"view": s.View(r.Context()),
	})
}

func (a *API) handleOfferOpen(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	if _, err := s.OpenOfferForm(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, s.View(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, s.View(r.Context()))
}

func (a *API) handleOfferSubmit(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var form domain.OfferForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	offer, err := s.SubmitOffer(r.Context(), form)
	if err != nil {
		if errors.Is(err, session.ErrNoOfferForm) {
			writeError(w, http.StatusConflict, err)
			return
		}
		// Validation failures and upstream rejections; the notice
		// carries the display message.
		writeJSON(w, http.StatusUnprocessableEntity, s.View(r.Context()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"offer": offer,
		"view":  s.View(r.Context()),
	})
}

func (a *API) handleJournalSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if a.journal == nil {
		writeError(w, http.StatusNotFound, errors.New("journal disabled"))
		return
	}

	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)
	sales, err := a.journal.ListSales(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (a *API) handleJournalOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if a.journal == nil {
		writeError(w, http.StatusNotFound, errors.New("journal disabled"))
		return
	}

	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)
	offers, err := a.journal.ListOffers(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": offers})
}

func (a *API) handleOperators(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"operators": a.auth.ListOperators()})
	case http.MethodPost:
		var req domain.OperatorCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		operator, err := a.auth.CreateOperator(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"operator": operator})
	default:
		writeMethodNotAllowed(w)
	}
}

func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownItem), errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrOutOfStock), errors.Is(err, cart.ErrStockExceeded):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx messages stay generic so internal details never reach clients;
	// 4xx messages are user-facing.
	msg := err.Error()
	if status >= 500 && status != http.StatusBadGateway {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
