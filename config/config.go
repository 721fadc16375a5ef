package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"
)

type Config struct {
	Addr string

	// Store backend: "postgrest", "sqlite" or "memory".
	StoreBackend    string
	StoreURL        string
	StoreAnonKey    string
	StoreServiceKey string
	DBPath          string

	SettingsPath string

	OpenRouterKey string

	AdminUser         string
	AdminPasswordHash string
	TokenSecret       string
	TokenTTL          time.Duration

	Debug bool
}

func ParseFlags() (cfg Config, err error) {
	var host string
	flag.StringVar(&host, "host", "0.0.0.0", "listen host name (default 0.0.0.0)")
	var port uint
	flag.UintVar(&port, "port", 8080, "listen port number (default 8080)")

	flag.StringVar(&cfg.StoreBackend, "store", "postgrest", "store backend: postgrest, sqlite or memory")
	flag.StringVar(&cfg.StoreURL, "store-url", envOr("STORE_URL", ""), "base URL of the PostgREST backend")
	flag.StringVar(&cfg.StoreAnonKey, "store-anon-key", envOr("STORE_ANON_KEY", ""), "anon API key for the PostgREST backend")
	flag.StringVar(&cfg.StoreServiceKey, "store-service-key", envOr("STORE_SERVICE_KEY", ""), "service API key for the PostgREST backend")
	flag.StringVar(&cfg.DBPath, "db-path", "apreciador.sqlite", "path to SQLite DB file for -store=sqlite")

	flag.StringVar(&cfg.SettingsPath, "settings", "settings.json", "path to the settings JSON file")

	flag.StringVar(&cfg.OpenRouterKey, "openrouter-key", envOr("OPENROUTER_API_KEY", ""), "OpenRouter API key")

	flag.StringVar(&cfg.AdminUser, "admin-user", "admin", "admin login user name")
	flag.StringVar(&cfg.AdminPasswordHash, "admin-password-hash", envOr("ADMIN_PASSWORD_HASH", ""), "bcrypt hash of the admin password")
	flag.StringVar(&cfg.TokenSecret, "token-secret", envOr("TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	flag.UintVar(&ttl, "token-ttl", 3600, "token TTL in seconds (default 3600)")

	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	switch cfg.StoreBackend {
	case "postgrest":
		if cfg.StoreURL == "" {
			err = errors.New("missing parameter -store-url")
			return
		}
		if cfg.StoreAnonKey == "" && cfg.StoreServiceKey == "" {
			err = errors.New("missing parameter -store-anon-key or -store-service-key")
			return
		}
	case "sqlite", "memory":
		// local backends need no remote credentials
	default:
		err = errors.New("unknown store backend: " + cfg.StoreBackend)
		return
	}

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
