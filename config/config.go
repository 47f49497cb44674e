package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort                   = "8080"
	DefaultStoreDriver            = StoreDriverMongo
	DefaultMongoDatabase          = "hotelDB"
	DefaultMongoCollection        = "customers"
	DefaultAccessTokenExpiryMin   = 15
	DefaultRefreshTokenExpiryMin  = 43200 // 30 days
	DefaultMaxActiveRefreshTokens = 5
	DefaultBcryptCost             = 12
	DefaultFederatedProvider      = FederatedProviderNone
	DefaultFederatedTimeoutSec    = 5
	DefaultRateLimitWindowMin     = 15
	DefaultRegisterRateLimit      = 10
	DefaultLoginRateLimit         = 20
	DefaultFederatedRateLimit     = 60
	DefaultLogLevel               = "info"
)

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"

	FederatedProviderNone     = "none"
	FederatedProviderFirebase = "firebase"
	FederatedProviderGoogle   = "google"
)

type Config struct {
	Env         string
	Port        string
	LogLevel    string
	StoreDriver string

	// ProxyHeader names the header carrying the client IP behind a reverse
	// proxy, e.g. X-Forwarded-For. Empty means the socket peer address.
	ProxyHeader    string
	// TrustedProxies restricts ProxyHeader to requests from these IPs or CIDRs.
	TrustedProxies []string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	AccessTokenSecret      string
	RefreshTokenSecret     string
	AccessExpiryMin        int
	RefreshExpiryMin       int
	MaxActiveRefreshTokens int
	BcryptCost             int

	FederatedProvider       string
	FirebaseCredentialsFile string
	FirebaseProjectID       string
	GoogleClientID          string
	FederatedTimeoutSec     int

	RateLimitWindowMin int
	RegisterRateLimit  int
	LoginRateLimit     int
	FederatedRateLimit int
}

// Load reads config/.env.dev or config/.env.prod (chosen by ENV) and then the
// process environment. Real environment variables always win over file values.
func Load() *Config {
	env := getEnv("ENV", "development")
	l := newLoader(env)

	cfg := &Config{
		Env:         env,
		Port:        l.get("PORT", DefaultPort),
		LogLevel:    l.get("LOG_LEVEL", DefaultLogLevel),
		StoreDriver: l.get("STORE_DRIVER", DefaultStoreDriver),

		ProxyHeader:    l.get("PROXY_HEADER", ""),
		TrustedProxies: l.getList("TRUSTED_PROXIES"),

		MongoDatabase:   l.get("MONGO_DATABASE", DefaultMongoDatabase),
		MongoCollection: l.get("MONGO_COLLECTION", DefaultMongoCollection),

		AccessTokenSecret:      l.must("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:     l.must("REFRESH_TOKEN_SECRET"),
		AccessExpiryMin:        l.getInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin),
		RefreshExpiryMin:       l.getInt("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiryMin),
		MaxActiveRefreshTokens: l.getInt("MAX_ACTIVE_REFRESH_TOKENS", DefaultMaxActiveRefreshTokens),
		BcryptCost:             l.getInt("BCRYPT_COST", DefaultBcryptCost),

		FederatedProvider:       l.get("FEDERATED_PROVIDER", DefaultFederatedProvider),
		FirebaseCredentialsFile: l.get("FIREBASE_CREDENTIALS_FILE", ""),
		FirebaseProjectID:       l.get("FIREBASE_PROJECT_ID", ""),
		GoogleClientID:          l.get("GOOGLE_CLIENT_ID", ""),
		FederatedTimeoutSec:     l.getInt("FEDERATED_TIMEOUT_SEC", DefaultFederatedTimeoutSec),

		RateLimitWindowMin: l.getInt("RATE_LIMIT_WINDOW_MIN", DefaultRateLimitWindowMin),
		RegisterRateLimit:  l.getInt("REGISTER_RATE_LIMIT", DefaultRegisterRateLimit),
		LoginRateLimit:     l.getInt("LOGIN_RATE_LIMIT", DefaultLoginRateLimit),
		FederatedRateLimit: l.getInt("FEDERATED_RATE_LIMIT", DefaultFederatedRateLimit),
	}

	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		log.Fatalf("Invalid config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	switch cfg.StoreDriver {
	case StoreDriverMongo:
		cfg.MongoURI = l.must("MONGO_URI")
	case StoreDriverMemory:
	default:
		log.Fatalf("Invalid config: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.FederatedProvider {
	case FederatedProviderNone:
	case FederatedProviderFirebase:
		cfg.FirebaseCredentialsFile = l.must("FIREBASE_CREDENTIALS_FILE")
	case FederatedProviderGoogle:
		cfg.GoogleClientID = l.must("GOOGLE_CLIENT_ID")
	default:
		log.Fatalf("Invalid config: unknown FEDERATED_PROVIDER %q", cfg.FederatedProvider)
	}

	return cfg
}

// loader resolves keys from the environment first, then from the env file.
type loader struct {
	file map[string]string
}

func newLoader(env string) loader {
	name := ".env.dev"
	if env == "production" {
		name = ".env.prod"
	}
	path := filepath.Join("config", name)
	if _, err := os.Stat(path); err != nil {
		return loader{}
	}
	values, err := godotenv.Read(path)
	if err != nil {
		log.Printf("Failed to read %s: %v", path, err)
		return loader{}
	}
	return loader{file: values}
}

func (l loader) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return l.file[key]
}

func (l loader) get(key, defaultVal string) string {
	if value := l.lookup(key); value != "" {
		return value
	}
	return defaultVal
}

func (l loader) must(key string) string {
	if value := l.lookup(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func (l loader) getInt(key string, defaultVal int) int {
	valStr := l.lookup(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}

// getList splits a comma-separated value, dropping blank entries.
func (l loader) getList(key string) []string {
	var out []string
	for _, item := range strings.Split(l.lookup(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
