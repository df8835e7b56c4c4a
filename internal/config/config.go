package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig configurazione PostgreSQL
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

// GetDSN restituisce la stringa di connessione
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig configurazione Redis (lock loader)
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GeminiConfig configurazione del servizio generativo.
// APIKey vuota = modalità offline: l'analisi usa solo il classificatore deterministico.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// LoaderConfig configurazione del caricatore anagrafica farmaci
type LoaderConfig struct {
	FeedURL   string
	BatchSize int
	// Interval tra i run schedulati; 0 disabilita lo scheduler (solo force_update)
	Interval time.Duration
	LockTTL  time.Duration
}

// Config configurazione elena-backend
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    RedisConfig
	Gemini   GeminiConfig
	Loader   LoaderConfig
	Log      struct {
		Level  string
		Format string
	}
}

// Load carica la configurazione dalle variabili d'ambiente
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":6118")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "elena118")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Gemini.APIKey = getEnv("GEMINI_API_KEY", "")
	cfg.Gemini.Model = getEnv("GEMINI_MODEL", "gemini-flash-latest")
	cfg.Gemini.BaseURL = getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	cfg.Gemini.Timeout = parseDuration(getEnv("GEMINI_TIMEOUT", "60s"), 60*time.Second)

	cfg.Loader.FeedURL = getEnv("FEED_URL", "https://www.dati.salute.gov.it/sites/default/files/anagrafica_farmaci.csv")
	cfg.Loader.BatchSize = parseInt(getEnv("LOADER_BATCH_SIZE", "500"), 500)
	cfg.Loader.Interval = parseDuration(getEnv("LOADER_INTERVAL", "0"), 0)
	cfg.Loader.LockTTL = parseDuration(getEnv("LOADER_LOCK_TTL", "10m"), 10*time.Minute)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if cfg.Loader.BatchSize <= 0 {
		return nil, fmt.Errorf("LOADER_BATCH_SIZE must be positive, got %d", cfg.Loader.BatchSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
