package config

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultSourceURL = "https://docs.google.com/spreadsheets/d/152JyksagijqyscnrFDc6Ez2VjT5MKNXpDOyc4PRlauw/export?format=xlsx"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SourceURL    string
	SourcePath   string
	OutputPath   string
	SkipDownload bool
	RatesURL     string
	RulesPath    string
	MatchPolicy  string

	MaxConcurrency int
	MaxRetries     int
	HTTPTimeoutSec int

	CSVOutputPath string
	ChromeBin     string
	LogLevel      string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		SourceURL:    getEnv("SOURCE_URL", defaultSourceURL),
		SourcePath:   getEnv("SOURCE_PATH", "./data.xlsx"),
		OutputPath:   getEnv("OUTPUT_PATH", "./processed_data.xlsx"),
		SkipDownload: getEnvBool("SKIP_DOWNLOAD", false),
		RatesURL:     getEnv("RATES_URL", "https://cbr.ru/currency_base/daily/"),
		RulesPath:    getEnv("RULES_PATH", "./rules.yaml"),
		MatchPolicy:  getEnv("TAG_MATCH_POLICY", "last"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", runtime.NumCPU()),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 60),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "enricher"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "enricher"),
		PostgresDB:       getEnv("POSTGRES_DB", "marketing"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}
