package memory

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
	"github.com/Khristo19/clothing-shop-pos/internal/journal"
	"github.com/Khristo19/clothing-shop-pos/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	sales           []domain.SaleRecord
	offers          []domain.OfferRecord
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial operator accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD;
// hardcoded dev defaults are used with a warning when unset. Production
// deployments use PostgreSQL via DATABASE_URL.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-journal] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-journal] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	return &Store{usersByUsername: seedUsers()}
}

// New returns an empty store with no seeded accounts, for tests.
func New() *Store {
	return &Store{usersByUsername: map[string]domain.UserAccount{}}
}

func (s *Store) CreateSale(_ context.Context, rec domain.SaleRecord) (*domain.SaleRecord, error) {
	if rec.TerminalID == "" || len(rec.Lines) == 0 {
		return nil, journal.ErrInvalidRecord
	}
	if rec.ID == "" {
		rec.ID = xid.New("sale")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, rec)
	saved := rec
	return &saved, nil
}

func (s *Store) ListSales(_ context.Context, limit int) ([]domain.SaleRecord, error) {
	if limit < 1 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SaleRecord, 0, limit)
	// Newest first.
	for i := len(s.sales) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.sales[i])
	}
	return out, nil
}

func (s *Store) CreateOffer(_ context.Context, rec domain.OfferRecord) (*domain.OfferRecord, error) {
	if rec.TerminalID == "" || rec.FromShop == "" {
		return nil, journal.ErrInvalidRecord
	}
	if rec.ID == "" {
		rec.ID = xid.New("offer")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers = append(s.offers, rec)
	saved := rec
	return &saved, nil
}

func (s *Store) ListOffers(_ context.Context, limit int) ([]domain.OfferRecord, error) {
	if limit < 1 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OfferRecord, 0, limit)
	for i := len(s.offers) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.offers[i])
	}
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return journal.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByUsername[user.Username]; exists {
		return journal.ErrDuplicate
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		out = append(out, user)
	}
	return out, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	if username == "" || password == "" {
		return journal.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.usersByUsername[username]
	if !exists {
		return journal.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}
