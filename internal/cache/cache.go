package cache

import (
	"context"
	"time"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

// SnapshotCache keeps the last good catalog list and shop settings so a
// restarted terminal can serve a warm catalog before the first upstream
// load completes.
type SnapshotCache interface {
	GetItems(ctx context.Context) ([]domain.Item, bool, error)
	SetItems(ctx context.Context, items []domain.Item, ttl time.Duration) error
	GetSettings(ctx context.Context) (*domain.ShopSettings, bool, error)
	SetSettings(ctx context.Context, settings domain.ShopSettings, ttl time.Duration) error
}

type NoopSnapshotCache struct{}

func (NoopSnapshotCache) GetItems(_ context.Context) ([]domain.Item, bool, error) {
	return nil, false, nil
}

func (NoopSnapshotCache) SetItems(_ context.Context, _ []domain.Item, _ time.Duration) error {
	return nil
}

func (NoopSnapshotCache) GetSettings(_ context.Context) (*domain.ShopSettings, bool, error) {
	return nil, false, nil
}

func (NoopSnapshotCache) SetSettings(_ context.Context, _ domain.ShopSettings, _ time.Duration) error {
	return nil
}
