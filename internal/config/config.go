package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                 string
	Env                  string // development or production
	LogLevel             string
	DatabaseURL          string
	RedisURL             string // Optional, caching is disabled when empty
	BaseURL              string // Backend base URL
	FrontendURL          string // Frontend base URL (profile pages and QR codes)
	JWTSecret            string // Secret key for JWT token signing
	JWTTTL               int    // JWT token expiration time in hours
	RateLimitRPS         float64
	RateLimitBurst       int
	RateLimitAuthRPS     float64
	RateLimitAuthBurst   int
	RateLimitWriteRPS    float64 // Profile mutations
	RateLimitWriteBurst  int
	RateLimitPublicRPS   float64 // Public profile pages and link redirects
	RateLimitPublicBurst int
}

var defaults = map[string]interface{}{
	"PORT":                    "8080",
	"APP_ENV":                 "development",
	"LOG_LEVEL":               "info",
	"BASE_URL":                "http://localhost:8080",
	"FRONTEND_URL":            "http://localhost:3000",
	"JWT_TTL_HOURS":           24,
	"RATE_LIMIT_RPS":          10.0,
	"RATE_LIMIT_BURST":        20,
	"RATE_LIMIT_AUTH_RPS":     5.0,
	"RATE_LIMIT_AUTH_BURST":   10,
	"RATE_LIMIT_WRITE_RPS":    2.0,
	"RATE_LIMIT_WRITE_BURST":  5,
	"RATE_LIMIT_PUBLIC_RPS":   30.0,
	"RATE_LIMIT_PUBLIC_BURST": 60,
}

// Load reads configuration from the environment, after merging an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port:                 v.GetString("PORT"),
		Env:                  strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:             v.GetString("LOG_LEVEL"),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		RedisURL:             v.GetString("REDIS_URL"),
		BaseURL:              strings.TrimRight(v.GetString("BASE_URL"), "/"),
		FrontendURL:          strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTTTL:               v.GetInt("JWT_TTL_HOURS"),
		RateLimitRPS:         v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:       v.GetInt("RATE_LIMIT_BURST"),
		RateLimitAuthRPS:     v.GetFloat64("RATE_LIMIT_AUTH_RPS"),
		RateLimitAuthBurst:   v.GetInt("RATE_LIMIT_AUTH_BURST"),
		RateLimitWriteRPS:    v.GetFloat64("RATE_LIMIT_WRITE_RPS"),
		RateLimitWriteBurst:  v.GetInt("RATE_LIMIT_WRITE_BURST"),
		RateLimitPublicRPS:   v.GetFloat64("RATE_LIMIT_PUBLIC_RPS"),
		RateLimitPublicBurst: v.GetInt("RATE_LIMIT_PUBLIC_BURST"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.JWTTTL)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
