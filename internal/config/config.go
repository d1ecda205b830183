package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the application reads from the environment.
// It is built once in main and handed to the components that need it.
type Config struct {
	Port string

	DBDriver    string // postgres or sqlite
	DatabaseURL string

	SessionSecret string
	SessionName   string

	UploadDir    string
	MaxUploadMB  int
	TemplatesDir string
	StaticDir    string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	GinMode           string
	AuthRatePerMinute int
	SeedDemo          bool
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading config from environment")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionName:       getEnv("SESSION_NAME", "agora_session"),
		UploadDir:         getEnv("UPLOAD_DIR", "web/static/uploads"),
		MaxUploadMB:       getInt("MAX_UPLOAD_MB", 10),
		TemplatesDir:      getEnv("TEMPLATES_DIR", "web/templates"),
		StaticDir:         getEnv("STATIC_DIR", "web/static"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogPath:           getEnv("LOG_PATH", ""),
		LogMaxSizeMB:      getInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:     getInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays:     getInt("LOG_MAX_AGE_DAYS", 7),
		LogCompress:       getBool("LOG_COMPRESS", false),
		GinMode:           getEnv("GIN_MODE", "release"),
		AuthRatePerMinute: getInt("AUTH_RATE_PER_MINUTE", 20),
		SeedDemo:          getBool("SEED_DEMO", false),
	}

	if cfg.DatabaseURL == "" {
		if cfg.DBDriver == "postgres" {
			// Fallback for local dev if not set
			cfg.DatabaseURL = "host=localhost user=postgres password=postgres dbname=agora port=5432 sslmode=disable"
		} else {
			cfg.DatabaseURL = "agora.db"
		}
	}
	if cfg.SessionSecret == "" {
		log.Println("SESSION_SECRET not set, using an insecure development secret")
		cfg.SessionSecret = "secret_key_change_me"
	}

	return cfg
}

// MaxUploadBytes is the per-file upload ceiling.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, def)
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
