package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
	"github.com/Khristo19/clothing-shop-pos/internal/journal"
	"github.com/Khristo19/clothing-shop-pos/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the journal tables if they are missing. The journal
// is terminal-local bookkeeping with three small tables, so the schema is
// managed in-process rather than with a migration tool. Decimals are stored
// as TEXT to preserve exact values.
func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pos_sales (
			id TEXT PRIMARY KEY,
			terminal_id TEXT NOT NULL,
			upstream_id BIGINT NOT NULL DEFAULT 0,
			lines JSONB NOT NULL,
			total TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			cashier_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS pos_offers (
			id TEXT PRIMARY KEY,
			terminal_id TEXT NOT NULL,
			upstream_id BIGINT NOT NULL DEFAULT 0,
			from_shop TEXT NOT NULL,
			discount_type TEXT NOT NULL,
			discount_value TEXT NOT NULL,
			cart_total TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS pos_users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateSale(ctx context.Context, rec domain.SaleRecord) (*domain.SaleRecord, error) {
	if rec.TerminalID == "" || len(rec.Lines) == 0 {
		return nil, journal.ErrInvalidRecord
	}
	if rec.ID == "" {
		rec.ID = xid.New("sale")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return nil, journal.ErrInvalidRecord
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pos_sales (id, terminal_id, upstream_id, lines, total, payment_method, cashier_name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, rec.TerminalID, rec.UpstreamID, lines, rec.Total.String(), rec.PaymentMethod, rec.CashierName, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, journal.ErrDuplicate
		}
		return nil, err
	}

	saved := rec
	return &saved, nil
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]domain.SaleRecord, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, terminal_id, upstream_id, lines, total, payment_method, cashier_name, created_at
		FROM pos_sales
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.SaleRecord, 0, limit)
	for rows.Next() {
		var rec domain.SaleRecord
		var lines []byte
		var total string
		if err := rows.Scan(&rec.ID, &rec.TerminalID, &rec.UpstreamID, &lines, &total, &rec.PaymentMethod, &rec.CashierName, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(lines, &rec.Lines); err != nil {
			return nil, err
		}
		if rec.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		sales = append(sales, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sales, nil
}

func (s *Store) CreateOffer(ctx context.Context, rec domain.OfferRecord) (*domain.OfferRecord, error) {
	if rec.TerminalID == "" || rec.FromShop == "" {
		return nil, journal.ErrInvalidRecord
	}
	if rec.ID == "" {
		rec.ID = xid.New("offer")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pos_offers (id, terminal_id, upstream_id, from_shop, discount_type, discount_value, cart_total, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rec.ID, rec.TerminalID, rec.UpstreamID, rec.FromShop, string(rec.Type), rec.Value.String(), rec.CartTotal.String(), rec.Notes, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, journal.ErrDuplicate
		}
		return nil, err
	}

	saved := rec
	return &saved, nil
}

func (s *Store) ListOffers(ctx context.Context, limit int) ([]domain.OfferRecord, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, terminal_id, upstream_id, from_shop, discount_type, discount_value, cart_total, notes, created_at
		FROM pos_offers
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]domain.OfferRecord, 0, limit)
	for rows.Next() {
		var rec domain.OfferRecord
		var discountType, value, cartTotal string
		if err := rows.Scan(&rec.ID, &rec.TerminalID, &rec.UpstreamID, &rec.FromShop, &discountType, &value, &cartTotal, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Type = domain.DiscountType(discountType)
		if rec.Value, err = decimal.NewFromString(value); err != nil {
			return nil, err
		}
		if rec.CartTotal, err = decimal.NewFromString(cartTotal); err != nil {
			return nil, err
		}
		offers = append(offers, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return offers, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return journal.ErrInvalidRecord
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pos_users (username, password_hash, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return journal.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password_hash, role, active, created_at
		FROM pos_users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	if username == "" || password == "" {
		return journal.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE pos_users SET password_hash = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return journal.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
