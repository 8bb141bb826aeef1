package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageSQL    = "postgres"
	StorageMemory = "memory"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	Port        string
	MetricsPort string
	Env         string

	Storage       string
	PostgresURL   string
	MongoURI      string
	MongoDatabase string

	AuthProvider            string
	JWTSecret               string
	FirebaseCredentialsPath string

	LogLevel  string
	LogFormat string

	WSSendBuffer      int
	WSEventsPerSecond float64
	WSEventBurst      int
	WSAllowedOrigins  []string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		Env:                     getEnv("ENV", "development"),
		Storage:                 getEnv("STORAGE", StorageSQL),
		PostgresURL:             getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialmedia"),
		AuthProvider:            getEnv("AUTH_PROVIDER", AuthJWT),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "text"),
		WSAllowedOrigins:        strings.Split(getEnv("WS_ALLOWED_ORIGINS", "*"), ","),
	}

	var err error
	if cfg.WSSendBuffer, err = getInt("WS_SEND_BUFFER", 64); err != nil {
		return nil, err
	}
	if cfg.WSEventBurst, err = getInt("WS_EVENT_BURST", 40); err != nil {
		return nil, err
	}
	if cfg.WSEventsPerSecond, err = getFloat("WS_EVENTS_PER_SECOND", 20); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageSQL:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI environment variable not set")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageSQL, StorageMemory, c.Storage)
	}

	switch c.AuthProvider {
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must not be empty")
		}
	case AuthFirebase:
		if c.Storage == StorageMemory {
			return fmt.Errorf("AUTH_PROVIDER=firebase needs STORAGE=%s to resolve users", StorageSQL)
		}
	default:
		return fmt.Errorf("AUTH_PROVIDER must be %q or %q, got %q", AuthJWT, AuthFirebase, c.AuthProvider)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
