package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	BackendBaseURL        string
	BackendToken          string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	ShopLabel             string
	DefaultTaxRatePercent string
	SettingsTTLSeconds    int
	AuthSecret            string
	AccessTokenTTLMinutes int
	InfoNoticeMillis      int
	ErrorNoticeMillis     int
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	settingsTTL, err := strconv.Atoi(getEnv("SETTINGS_TTL_SECONDS", "60"))
	if err != nil || settingsTTL < 1 {
		settingsTTL = 60
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	infoNotice, err := strconv.Atoi(getEnv("INFO_NOTICE_MILLIS", "2500"))
	if err != nil || infoNotice < 1 {
		infoNotice = 2500
	}
	errorNotice, err := strconv.Atoi(getEnv("ERROR_NOTICE_MILLIS", "4000"))
	if err != nil || errorNotice < 1 {
		errorNotice = 4000
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:4200"),
		BackendBaseURL:        getEnv("BACKEND_BASE_URL", "http://127.0.0.1:3000/api"),
		BackendToken:          strings.TrimSpace(os.Getenv("BACKEND_TOKEN")),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		ShopLabel:             getEnv("SHOP_LABEL", "POS Front Desk"),
		DefaultTaxRatePercent: getEnv("DEFAULT_TAX_RATE_PERCENT", "0"),
		SettingsTTLSeconds:    settingsTTL,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		InfoNoticeMillis:      infoNotice,
		ErrorNoticeMillis:     errorNotice,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
