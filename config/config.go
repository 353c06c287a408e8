package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatasetPath  string
	ArtifactPath string
	StoreBackend string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	DBMaxRetries     int

	HTTPAddr     string
	BatchWorkers int
	RidgeLambda  float64
	LogLevel     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DatasetPath:  getEnv("DATASET_PATH", "./data/Cardetails_cleaned.csv"),
		ArtifactPath: getEnv("ARTIFACT_PATH", "./model/model.json"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendFile)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "smartprice"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "smartprice"),
		PostgresDB:       getEnv("POSTGRES_DB", "car_prices"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		DBMaxRetries:     getEnvInt("DB_MAX_RETRIES", 5),

		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		BatchWorkers: getEnvInt("BATCH_WORKERS", 4),
		RidgeLambda:  getEnvFloat("RIDGE_LAMBDA", 1e-6),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
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

// UsePostgres reports whether listings and artifacts live in PostgreSQL.
func (c *Config) UsePostgres() bool {
	return c.StoreBackend == BackendPostgres
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

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
