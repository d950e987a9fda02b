// Package catalog keeps the in-memory purchasable item list for a
// terminal. The list is replaced wholesale on each successful load; a
// failed load preserves the previous list and records an error for
// display. Stock values are snapshots: the upstream backend re-validates
// at sale time.
package catalog

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Khristo19/clothing-shop-pos/internal/cache"
	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

const loadErrorFallback = "Unable to load inventory."

// Lister is the slice of the upstream client the catalog needs.
type Lister interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
}

// messager matches backend.Message without importing the package here.
type messageFunc func(err error, fallback string) string

type Cache struct {
	mu        sync.RWMutex
	client    Lister
	snapshots cache.SnapshotCache
	snapTTL   time.Duration
	message   messageFunc

	items   []domain.Item
	loadErr string
	loaded  bool
}

func New(client Lister, snapshots cache.SnapshotCache, snapTTL time.Duration, message func(error, string) string) *Cache {
	if snapshots == nil {
		snapshots = cache.NoopSnapshotCache{}
	}
	if message == nil {
		message = func(err error, fallback string) string { return fallback }
	}
	return &Cache{
		client:    client,
		snapshots: snapshots,
		snapTTL:   snapTTL,
		message:   message,
	}
}

// Warm serves the last persisted snapshot until the first live load
// lands. Missing or unreadable snapshots are not an error.
func (c *Cache) Warm(ctx context.Context) {
	items, ok, err := c.snapshots.GetItems(ctx)
	if err != nil {
		log.Printf("[catalog] WARN: snapshot read failed: %v", err)
		return
	}
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.items = items
	}
}

// Load replaces the held list from the upstream backend. On failure the
// previous list is preserved and the error message is retained for the UI.
func (c *Cache) Load(ctx context.Context) error {
	items, err := c.client.ListItems(ctx)
	if err != nil {
		c.mu.Lock()
		c.loadErr = c.message(err, loadErrorFallback)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.items = items
	c.loadErr = ""
	c.loaded = true
	c.mu.Unlock()

	if err := c.snapshots.SetItems(ctx, items, c.snapTTL); err != nil {
		log.Printf("[catalog] WARN: snapshot write failed: %v", err)
	}
	return nil
}

// Items returns a copy of the held list.
func (c *Cache) Items() []domain.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Get looks up one item by id.
func (c *Cache) Get(id int64) (domain.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.Item{}, false
}

// Filter returns items whose name or description contains the term
// (case-insensitive), sorted by stock descending so sellable items lead.
// An empty term matches everything.
func (c *Cache) Filter(term string) []domain.Item {
	term = strings.ToLower(strings.TrimSpace(term))

	c.mu.RLock()
	matched := make([]domain.Item, 0, len(c.items))
	for _, item := range c.items {
		haystack := strings.ToLower(item.Name + " " + item.Description)
		if term == "" || strings.Contains(haystack, term) {
			matched = append(matched, item)
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Stock > matched[j].Stock
	})
	return matched
}

// LoadError returns the message from the most recent failed load, or ""
// after a successful one.
func (c *Cache) LoadError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}
