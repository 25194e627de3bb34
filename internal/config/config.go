package config

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Wix       WixConfig       `json:"wix"`
	Store     StoreConfig     `json:"store"`
	Session   SessionConfig   `json:"session"`
	Mocks     MockConfig      `json:"mocks"`
	Telemetry TelemetryConfig `json:"telemetry"`
}

// WixConfig points the upstream client at the commerce platform.
type WixConfig struct {
	ClientID string        `json:"client_id"`
	APIKey   string        `json:"api_key"`
	SiteID   string        `json:"site_id"`
	BaseURL  string        `json:"base_url"`
	Retries  int           `json:"retries"`
	Timeout  time.Duration `json:"timeout"`

	HTTPClient *http.Client `json:"-"` // tests only
}

// StoreConfig controls how upstream records are normalized.
type StoreConfig struct {
	Currency         string `json:"currency"`
	HiddenPrefix     string `json:"hidden_prefix"`
	MaxVariants      int    `json:"max_variants"`
	PagesCollection  string `json:"pages_collection"`
	MenusCollection  string `json:"menus_collection"`
	CheckoutCallback string `json:"checkout_callback"`
	PublicURL        string `json:"public_url"`
}

type SessionConfig struct {
	CookieName   string `json:"cookie_name"`
	SecureCookie bool   `json:"secure_cookie"`
}

type MockConfig struct {
	Enable bool `json:"enable"`
}

// TelemetryConfig ships logs and traces over OTLP/HTTP when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string `json:"endpoint"`
	ServiceName string `json:"service_name"`
}

func (t TelemetryConfig) Enabled() bool {
	return t.Endpoint != ""
}

func (w WixConfig) Enabled() bool {
	return w.ClientID != "" || w.APIKey != ""
}

func Load() (*Config, error) {
	publicURL := strings.TrimSuffix(getEnvOrDefault("STORE_PUBLIC_URL", "http://localhost:8080"), "/")
	config := &Config{
		Wix: WixConfig{
			ClientID: os.Getenv("WIX_CLIENT_ID"),
			APIKey:   os.Getenv("WIX_API_KEY"),
			SiteID:   os.Getenv("WIX_SITE_ID"),
			BaseURL:  getEnvOrDefault("WIX_BASE_URL", "https://www.wixapis.com"),
			Retries:  getIntOrDefault("WIX_HTTP_RETRIES", 0),
			Timeout:  getDurationOrDefault("WIX_HTTP_TIMEOUT", 20*time.Second),
		},
		Store: StoreConfig{
			Currency:         getEnvOrDefault("STORE_CURRENCY", "USD"),
			HiddenPrefix:     getEnvOrDefault("STORE_HIDDEN_PREFIX", "hidden"),
			MaxVariants:      getIntOrDefault("STORE_MAX_VARIANTS", 1000),
			PagesCollection:  getEnvOrDefault("STORE_PAGES_COLLECTION", "Pages"),
			MenusCollection:  getEnvOrDefault("STORE_MENUS_COLLECTION", "Menus"),
			CheckoutCallback: getEnvOrDefault("STORE_CHECKOUT_CALLBACK", publicURL+"/"),
			PublicURL:        publicURL,
		},
		Session: SessionConfig{
			CookieName:   getEnvOrDefault("SESSION_COOKIE_NAME", "wixSession"),
			SecureCookie: getBool("SESSION_COOKIE_SECURE"),
		},
		Mocks: MockConfig{
			Enable: getBool("MOCKS"),
		},
		Telemetry: TelemetryConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: getEnvOrDefault("OTEL_SERVICE_NAME", "storefront"),
		},
	}

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getBool(key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && value
}
