// Package settings resolves shop configuration for the terminal. The tax
// rate comes from the upstream /settings endpoint in percentage units
// (18 means 18%), refreshed on a TTL, with the last good value and a
// configured default as fallbacks.
package settings

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Khristo19/clothing-shop-pos/internal/cache"
	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

// Getter is the slice of the upstream client the provider needs.
type Getter interface {
	GetSettings(ctx context.Context) (*domain.ShopSettings, error)
}

type Provider struct {
	mu        sync.Mutex
	client    Getter
	snapshots cache.SnapshotCache
	ttl       time.Duration

	defaultRate decimal.Decimal
	current     *domain.ShopSettings
	fetchedAt   time.Time
}

func NewProvider(client Getter, snapshots cache.SnapshotCache, ttl time.Duration, defaultRate decimal.Decimal) *Provider {
	if snapshots == nil {
		snapshots = cache.NoopSnapshotCache{}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Provider{
		client:      client,
		snapshots:   snapshots,
		ttl:         ttl,
		defaultRate: defaultRate,
	}
}

// TaxRate returns the current tax rate in percentage units. Failures never
// block checkout: the last good value wins, then the persisted snapshot,
// then the configured default.
func (p *Provider) TaxRate(ctx context.Context) decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && time.Since(p.fetchedAt) < p.ttl {
		return p.current.TaxRatePercent
	}

	fetched, err := p.client.GetSettings(ctx)
	if err == nil {
		p.current = fetched
		p.fetchedAt = time.Now()
		if cacheErr := p.snapshots.SetSettings(ctx, *fetched, p.ttl*10); cacheErr != nil {
			log.Printf("[settings] WARN: snapshot write failed: %v", cacheErr)
		}
		return fetched.TaxRatePercent
	}
	log.Printf("[settings] WARN: upstream settings fetch failed: %v", err)

	if p.current != nil {
		return p.current.TaxRatePercent
	}

	snap, ok, cacheErr := p.snapshots.GetSettings(ctx)
	if cacheErr == nil && ok {
		p.current = snap
		p.fetchedAt = time.Now()
		return snap.TaxRatePercent
	}

	return p.defaultRate
}
