package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	CacheDBPath string // local sqlite fallback cache for content

	ContentApiURL       string // remote content source base URL
	ContentFetchTimeout int    // milliseconds, hard ceiling on remote fetch

	DefaultContentPrice     int // credits, standard-mode fallback price
	DefaultCompetitivePrice int // credits, competitive-mode fallback price
	AnalysisUnlockPrice     int // credits, post-quiz analysis unlock

	UsageHistoryCap int // max retained usage-log entries per user

	UserSyncURL string // best-effort remote snapshot sync, empty disables

	EmailSender string
	Password    string // SMTP Password
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		CacheDBPath: getEnv("CACHE_DB", "contentCache.db"),

		ContentApiURL:       getEnv("CONTENT_API_URL", "http://localhost:8080/api/v1"),
		ContentFetchTimeout: getEnvInt("CONTENT_FETCH_TIMEOUT_MS", 4000),

		DefaultContentPrice:     getEnvInt("DEFAULT_CONTENT_PRICE", 5),
		DefaultCompetitivePrice: getEnvInt("DEFAULT_COMPETITIVE_PRICE", 10),
		AnalysisUnlockPrice:     getEnvInt("ANALYSIS_UNLOCK_PRICE", 2),

		UsageHistoryCap: getEnvInt("USAGE_HISTORY_CAP", 50),

		UserSyncURL: getEnv("USER_SYNC_URL", ""),

		EmailSender: getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:    getEnv("PASSWORD", "defaultSecret"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
