package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	SessionCookie  string
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	MaxPages       int

	DataDir       string
	MergedCSVPath string
	MaterialsPath string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "lithos"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "lithos123"),
		PostgresDB:       getEnv("POSTGRES_DB", "lithos_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		SessionCookie:  getEnv("WORTHPOINT_SESSION", ""),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 3000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		MaxPages:       getEnvInt("MAX_PAGES", 100),

		DataDir:       getEnv("DATA_DIR", "./worthpoint-data"),
		MergedCSVPath: getEnv("MERGED_CSV_PATH", "./worthpoint-data/worthpoint-all-materials.csv"),
		MaterialsPath: getEnv("MATERIALS_PATH", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
