package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// CommissionRates holds the referral commission percentage for each of the
// three upline levels. Rates are whole percentages of the credited amount.
type CommissionRates struct {
	Level1 float64
	Level2 float64
	Level3 float64
}

// Rate returns the percentage for the given level (1-based). Levels outside
// 1..3 earn nothing.
func (r CommissionRates) Rate(level int) float64 {
	switch level {
	case 1:
		return r.Level1
	case 2:
		return r.Level2
	case 3:
		return r.Level3
	}
	return 0
}

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Referral commissions
	Commission CommissionRates

	// Accrual
	AccrualAPIKey   string // shared key for the ops accrual-trigger endpoint
	AccrualSchedule bool   // run the in-process daily accrual job
	AccrualHourUTC  int    // hour of day (UTC) for the scheduled run
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		Commission: CommissionRates{
			Level1: getEnvFloat("REFERRAL_LEVEL1_RATE", 15),
			Level2: getEnvFloat("REFERRAL_LEVEL2_RATE", 8),
			Level3: getEnvFloat("REFERRAL_LEVEL3_RATE", 5),
		},

		AccrualAPIKey:   getEnv("ACCRUAL_API_KEY", ""),
		AccrualSchedule: getEnv("ACCRUAL_SCHEDULE", "false") == "true",
		AccrualHourUTC:  getEnvInt("ACCRUAL_HOUR_UTC", 0),
	}

	// The scheduler converts the hour to an unsigned at-time, so an
	// out-of-range value must be caught here.
	if config.AccrualHourUTC < 0 || config.AccrualHourUTC > 23 {
		log.Printf("Warning: ACCRUAL_HOUR_UTC %d out of range [0,23], using 0\n", config.AccrualHourUTC)
		config.AccrualHourUTC = 0
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid %s value '%s', using default %v\n", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s value '%s', using default %v\n", key, value, defaultValue)
	}
	return defaultValue
}
