// Package notice owns the transient banner shown to the cashier. Each new
// notice cancels and reschedules the auto-dismiss timer; Close cancels any
// pending timer so a torn-down session leaves no dangling callback.
package notice

import (
	"sync"
	"time"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

type Banner struct {
	mu      sync.Mutex
	current *domain.Notice
	timer   *time.Timer
	closed  bool
}

func NewBanner() *Banner {
	return &Banner{}
}

// Show replaces the current notice and schedules its dismissal after ttl.
func (b *Banner) Show(text string, tone domain.NoticeTone, ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	shown := &domain.Notice{Text: text, Tone: tone}
	b.current = shown
	b.timer = time.AfterFunc(ttl, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// Only dismiss if no newer notice replaced this one.
		if b.current == shown {
			b.current = nil
		}
	})
}

// Current returns the visible notice, or nil once dismissed.
func (b *Banner) Current() *domain.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	copied := *b.current
	return &copied
}

// Close cancels any pending dismissal and blanks the banner.
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.current = nil
	b.closed = true
}
