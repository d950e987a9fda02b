// Package journal records what this terminal did: completed sales and
// submitted discount requests, for end-of-day reconciliation against the
// upstream backend. It also persists terminal operator accounts. The
// upstream backend stays the source of truth for all business state.
package journal

import (
	"context"
	"errors"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
	ErrDuplicate     = errors.New("duplicate record")
)

type Repository interface {
	CreateSale(ctx context.Context, rec domain.SaleRecord) (*domain.SaleRecord, error)
	ListSales(ctx context.Context, limit int) ([]domain.SaleRecord, error)
	CreateOffer(ctx context.Context, rec domain.OfferRecord) (*domain.OfferRecord, error)
	ListOffers(ctx context.Context, limit int) ([]domain.OfferRecord, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
