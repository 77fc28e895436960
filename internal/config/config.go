package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the ctop-backend configuration. Loaded once at startup and
// treated as immutable afterwards; credentials never live in package globals.
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	OneM2M    OneM2MConfig
	Geocode   GeocodeConfig
	JWT       JWTConfig
	Bootstrap BootstrapConfig
}

// DatabaseConfig Postgres connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// OneM2MConfig remote resource-tree (Mobius/OM2M) settings
type OneM2MConfig struct {
	BaseURL  string        // e.g. "http://localhost:8080/~/in-cse/in-name"
	Username string        // origin credential, sent as X-M2M-Origin "user:pass"
	Password string
	Timeout  time.Duration // default request timeout; the batch path issues thousands of calls
}

// GeocodeConfig reverse-geocoding (Nominatim) settings
type GeocodeConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// JWTConfig token issuance settings
type JWTConfig struct {
	Secret        string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// BootstrapConfig controls startup seeding (admin user, standard verticals)
type BootstrapConfig struct {
	SeedAdmin     bool
	AdminEmail    string
	AdminPassword string
	SeedVerticals bool
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "ctop")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.OneM2M.BaseURL = getEnv("OM2M_URL", "http://localhost:8080/~/in-cse/in-name")
	cfg.OneM2M.Username = getEnv("OM2M_USERNAME", "admin")
	cfg.OneM2M.Password = getEnv("OM2M_PASSWORD", "admin")
	cfg.OneM2M.Timeout = parseDuration(getEnv("OM2M_TIMEOUT", "30s"), 30*time.Second)

	cfg.Geocode.BaseURL = getEnv("GEOCODE_URL", "https://nominatim.openstreetmap.org")
	cfg.Geocode.UserAgent = getEnv("GEOCODE_USER_AGENT", "pincode_finder")
	cfg.Geocode.Timeout = parseDuration(getEnv("GEOCODE_TIMEOUT", "10s"), 10*time.Second)

	cfg.JWT.Secret = getEnv("JWT_SECRET_KEY", "")
	cfg.JWT.RefreshSecret = getEnv("JWT_REFRESH_SECRET_KEY", "")
	cfg.JWT.AccessTTL = time.Duration(parseInt(getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "30"), 30)) * time.Minute
	cfg.JWT.RefreshTTL = time.Duration(parseInt(getEnv("REFRESH_TOKEN_EXPIRE_MINUTES", "10080"), 10080)) * time.Minute

	cfg.Bootstrap.SeedAdmin = getEnv("SEED_ADMIN", "true") == "true"
	cfg.Bootstrap.AdminEmail = getEnv("ADMIN_EMAIL", "admin@localhost")
	cfg.Bootstrap.AdminPassword = getEnv("ADMIN_PASSWORD", "admin")
	cfg.Bootstrap.SeedVerticals = getEnv("SEED_VERTICALS", "false") == "true"

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
