package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	LogFile  string

	StoreDriver             string
	FirebaseCredentialsPath string
	FirebaseProjectID       string
	MongoURI                string
	MongoDatabase           string
	PostgresConnStr         string

	AuthMode  string
	JWTSecret string

	LedgerMode        string
	ReconcileInterval time.Duration
	// StoryCleanupInterval paces expired-story deletion; 0 disables it.
	StoryCleanupInterval time.Duration

	GeminiAPIKey string
	GeminiModel  string

	MetricsPort string
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFile:                 getEnv("LOG_FILE", ""),
		StoreDriver:             strings.ToLower(getEnv("STORE_DRIVER", StoreFirestore)),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "moments"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		AuthMode:                strings.ToLower(getEnv("AUTH_MODE", AuthFirebase)),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		LedgerMode:              getEnv("LEDGER_MODE", "direct"),
		ReconcileInterval:       getDuration("RECONCILE_INTERVAL", 0),
		StoryCleanupInterval:    getDuration("STORY_CLEANUP_INTERVAL", time.Hour),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModel:             getEnv("GEMINI_MODEL", ""),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
	}
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses values such as "15m". Invalid values fall back to the default.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration %q for %s, using %s\n", value, key, defaultValue)
		return defaultValue
	}
	return d
}
