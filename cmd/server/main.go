package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Khristo19/clothing-shop-pos/internal/backend"
	"github.com/Khristo19/clothing-shop-pos/internal/cache"
	"github.com/Khristo19/clothing-shop-pos/internal/catalog"
	"github.com/Khristo19/clothing-shop-pos/internal/config"
	"github.com/Khristo19/clothing-shop-pos/internal/httpapi"
	"github.com/Khristo19/clothing-shop-pos/internal/journal"
	"github.com/Khristo19/clothing-shop-pos/internal/journal/memory"
	pgjournal "github.com/Khristo19/clothing-shop-pos/internal/journal/postgres"
	"github.com/Khristo19/clothing-shop-pos/internal/session"
	"github.com/Khristo19/clothing-shop-pos/internal/settings"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var jrnl journal.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgjournal.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		jrnl = pg
		closers = append(closers, pg.Close)
		log.Println("journal: postgres")
	} else {
		jrnl = memory.NewSeeded()
		log.Println("journal: in-memory")
	}

	snapshots := cache.SnapshotCache(cache.NoopSnapshotCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSnapshotCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop snapshot cache", err)
		} else {
			snapshots = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("snapshot cache: redis")
		}
	} else {
		log.Println("snapshot cache: noop")
	}

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendToken)

	settingsTTL := time.Duration(cfg.SettingsTTLSeconds) * time.Second
	defaultRate, err := decimal.NewFromString(cfg.DefaultTaxRatePercent)
	if err != nil {
		log.Fatalf("invalid DEFAULT_TAX_RATE_PERCENT %q: %v", cfg.DefaultTaxRatePercent, err)
	}
	rates := settings.NewProvider(client, snapshots, settingsTTL, defaultRate)

	cat := catalog.New(client, snapshots, settingsTTL*10, backend.Message)
	cat.Warm(ctx)
	if err := cat.Load(ctx); err != nil {
		// The terminal still starts; the snapshot (if any) serves until
		// the backend comes back and a reload succeeds.
		log.Printf("initial catalog load failed: %v", err)
	}

	sessions := session.NewManager(session.Config{
		Backend:   client,
		Catalog:   cat,
		Settings:  rates,
		Journal:   jrnl,
		ShopLabel: cfg.ShopLabel,
		InfoTTL:   time.Duration(cfg.InfoNoticeMillis) * time.Millisecond,
		ErrorTTL:  time.Duration(cfg.ErrorNoticeMillis) * time.Millisecond,
	})

	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, jrnl)
	api := httpapi.New(sessions, cat, jrnl, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("POS terminal listening on %s (backend %s)", cfg.Address(), cfg.BackendBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	sessions.CloseAll()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
