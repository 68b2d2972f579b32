// Package config centraliza o carregamento de configurações da aplicação.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
)

type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Storage     StorageConfig
	RateLimiter RateLimiterConfig
	Guard       GuardConfig
	Checkout    CheckoutConfig
	WhatsApp    WhatsAppConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type LogConfig struct {
	Level string
}

type StorageConfig struct {
	Type  string
	Redis RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type RateLimiterConfig struct {
	Login         domain.RateLimitPolicy
	API           domain.RateLimitPolicy
	SweepInterval time.Duration
}

type GuardConfig struct {
	APIPrefix          string
	TrustProxyHeaders  bool
	CSRFExemptPrefixes []string
	CSRFCookieSecure   bool
	RequireAJAX        bool
}

type CheckoutConfig struct {
	AllowedOrigin string
}

type WhatsAppConfig struct {
	VerifyToken string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	switch env {
	case "dev", "test", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV: must be one of dev, test, prod")
	}

	redisConfig, err := buildRedisConfig()
	if err != nil {
		return Config{}, err
	}

	rateLimiterConfig, err := buildRateLimiterConfig()
	if err != nil {
		return Config{}, err
	}

	guardConfig, err := buildGuardConfig(env)
	if err != nil {
		return Config{}, err
	}

	storageType := strings.ToLower(getEnv("STORAGE_TYPE", "memory"))
	switch storageType {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_TYPE: %s", storageType)
	}

	return Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  env,
		},
		Log: LogConfig{Level: getEnv("LOG_LEVEL", "info")},
		Storage: StorageConfig{
			Type:  storageType,
			Redis: redisConfig,
		},
		RateLimiter: rateLimiterConfig,
		Guard:       guardConfig,
		Checkout: CheckoutConfig{
			AllowedOrigin: getEnv("CHECKOUT_ALLOWED_ORIGIN", "torneirinhadocarlao.com.br"),
		},
		WhatsApp: WhatsAppConfig{
			VerifyToken: os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		},
	}, nil
}

func (c Config) IsProd() bool { return c.Server.Env == "prod" }

func buildRedisConfig() (RedisConfig, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return RedisConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func buildRateLimiterConfig() (RateLimiterConfig, error) {
	login, err := buildPolicy("login", "RATE_LIMIT_LOGIN", 5, 15*60)
	if err != nil {
		return RateLimiterConfig{}, err
	}
	api, err := buildPolicy("api", "RATE_LIMIT_API", 100, 60)
	if err != nil {
		return RateLimiterConfig{}, err
	}
	sweepSeconds, err := strconv.Atoi(getEnv("RATE_LIMIT_SWEEP_INTERVAL_SECONDS", "300"))
	if err != nil {
		return RateLimiterConfig{}, fmt.Errorf("invalid RATE_LIMIT_SWEEP_INTERVAL_SECONDS: %w", err)
	}

	return RateLimiterConfig{
		Login:         login,
		API:           api,
		SweepInterval: time.Duration(sweepSeconds) * time.Second,
	}, nil
}

func buildPolicy(name, prefix string, defaultMax, defaultWindowSeconds int) (domain.RateLimitPolicy, error) {
	maxAttempts, err := strconv.Atoi(getEnv(prefix+"_MAX_ATTEMPTS", strconv.Itoa(defaultMax)))
	if err != nil {
		return domain.RateLimitPolicy{}, fmt.Errorf("invalid %s_MAX_ATTEMPTS: %w", prefix, err)
	}
	windowSeconds, err := strconv.Atoi(getEnv(prefix+"_WINDOW_SECONDS", strconv.Itoa(defaultWindowSeconds)))
	if err != nil {
		return domain.RateLimitPolicy{}, fmt.Errorf("invalid %s_WINDOW_SECONDS: %w", prefix, err)
	}

	policy := domain.RateLimitPolicy{
		Name:        name,
		MaxAttempts: maxAttempts,
		Window:      time.Duration(windowSeconds) * time.Second,
	}
	if err := policy.Validate(); err != nil {
		return domain.RateLimitPolicy{}, err
	}
	return policy, nil
}

func buildGuardConfig(env string) (GuardConfig, error) {
	trustProxy, err := strconv.ParseBool(getEnv("TRUST_PROXY_HEADERS", "false"))
	if err != nil {
		return GuardConfig{}, fmt.Errorf("invalid TRUST_PROXY_HEADERS: %w", err)
	}
	cookieSecure, err := strconv.ParseBool(getEnv("CSRF_COOKIE_SECURE", strconv.FormatBool(env == "prod")))
	if err != nil {
		return GuardConfig{}, fmt.Errorf("invalid CSRF_COOKIE_SECURE: %w", err)
	}

	requireAJAX, err := strconv.ParseBool(getEnv("REQUIRE_AJAX_HEADERS", "false"))
	if err != nil {
		return GuardConfig{}, fmt.Errorf("invalid REQUIRE_AJAX_HEADERS: %w", err)
	}

	prefix := getEnv("API_PREFIX", "/api/")
	if !strings.HasPrefix(prefix, "/") || !strings.HasSuffix(prefix, "/") {
		return GuardConfig{}, fmt.Errorf("invalid API_PREFIX: must start and end with /")
	}

	return GuardConfig{
		APIPrefix:          prefix,
		TrustProxyHeaders:  trustProxy,
		CSRFExemptPrefixes: parseCSV(os.Getenv("CSRF_EXEMPT_PREFIXES")),
		CSRFCookieSecure:   cookieSecure,
		RequireAJAX:        requireAJAX,
	}, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
