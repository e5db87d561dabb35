package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Scheduling
	Timezone            string
	OperatingDayStart   int // hour, 24h clock
	OperatingDayEnd     int // hour, 24h clock
	BookingWindowDays   int
	SimulatedSlotSeed   int64
	SimulatedSlotRatio  float64
	AllowSimulatedSlots bool

	// Payments
	AllowSimulatedCard bool

	// Rate limiting for booking submission
	SubmitRatePerSecond float64
	SubmitBurst         int

	// Notifications (AWS SES)
	AWSRegion      string
	SESFromEmail   string
	SESFromName    string
	NotifyDisabled bool

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		Timezone:            getEnv("BOOKING_TZ", "Africa/Lagos"),
		OperatingDayStart:   getEnvAsInt("OPERATING_DAY_START", 8),
		OperatingDayEnd:     getEnvAsInt("OPERATING_DAY_END", 18),
		BookingWindowDays:   getEnvAsInt("BOOKING_WINDOW_DAYS", 14),
		SimulatedSlotSeed:   int64(getEnvAsInt("SIMULATED_SLOT_SEED", 0)),
		SimulatedSlotRatio:  getEnvAsFloat("SIMULATED_SLOT_RATIO", 0.8),
		AllowSimulatedSlots: getEnvAsBool("ALLOW_SIMULATED_SLOTS", true),

		AllowSimulatedCard: getEnvAsBool("ALLOW_SIMULATED_CARD", true),

		SubmitRatePerSecond: getEnvAsFloat("SUBMIT_RATE_PER_SECOND", 1),
		SubmitBurst:         getEnvAsInt("SUBMIT_BURST", 5),

		AWSRegion:      getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail:   getEnv("SES_FROM_EMAIL", ""),
		SESFromName:    getEnv("SES_FROM_NAME", "HomeLink Care"),
		NotifyDisabled: getEnvAsBool("NOTIFY_DISABLED", false),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
