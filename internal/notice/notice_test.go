package notice

import (
	"testing"
	"time"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

func TestShowAndAutoDismiss(t *testing.T) {
	b := NewBanner()
	b.Show("Sale completed.", domain.NoticeInfo, 20*time.Millisecond)

	current := b.Current()
	if current == nil || current.Text != "Sale completed." || current.Tone != domain.NoticeInfo {
		t.Fatalf("unexpected notice %+v", current)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for b.Current() != nil {
		if time.Now().After(deadline) {
			t.Fatalf("notice was not auto-dismissed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewNoticeReschedulesTimer(t *testing.T) {
	b := NewBanner()
	b.Show("first", domain.NoticeInfo, 10*time.Millisecond)
	b.Show("second", domain.NoticeError, time.Minute)

	// The first timer may fire; the second notice must survive it.
	time.Sleep(50 * time.Millisecond)
	current := b.Current()
	if current == nil || current.Text != "second" {
		t.Fatalf("expected second notice to remain, got %+v", current)
	}
}

func TestCloseCancelsPendingTimer(t *testing.T) {
	b := NewBanner()
	b.Show("pending", domain.NoticeInfo, time.Minute)
	b.Close()
	if b.Current() != nil {
		t.Fatalf("expected blank banner after close")
	}
	// Show after close is a no-op.
	b.Show("late", domain.NoticeInfo, time.Minute)
	if b.Current() != nil {
		t.Fatalf("closed banner must ignore new notices")
	}
}
