package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port == "" {
		t.Fatalf("expected default port")
	}
	if cfg.Address() != ":"+cfg.Port {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
	if cfg.ShopLabel == "" {
		t.Fatalf("expected default shop label")
	}
	if cfg.InfoNoticeMillis < 1 || cfg.ErrorNoticeMillis < 1 {
		t.Fatalf("notice durations must be positive")
	}
}
