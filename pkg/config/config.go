package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Telegram Bot configuration
	BotToken string

	// OpenAI configuration (optional; icebreaker copy falls back to
	// static messages when no key is set)
	OpenAIAPIBase string
	OpenAIAPIKey  string
	OpenAIModel   string

	// Application configuration
	DataDir          string
	DefaultGroupSize int
	ScheduleWeekday  time.Weekday
	ScheduleHour     int
	ProposalTTL      time.Duration
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{}

	// Required configurations
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is required")
	}
	cfg.BotToken = botToken

	// Optional configurations with defaults
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIAPIBase = getEnvWithDefault("OPENAI_API_BASE", "https://api.openai.com/v1")
	cfg.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	cfg.DataDir = getEnvWithDefault("DATA_DIR", "./data")

	cfg.DefaultGroupSize, err = getEnvInt("DEFAULT_GROUP_SIZE", 2)
	if err != nil {
		return nil, err
	}
	if cfg.DefaultGroupSize < 1 {
		return nil, fmt.Errorf("DEFAULT_GROUP_SIZE must be at least 1")
	}

	cfg.ScheduleWeekday, err = parseWeekday(getEnvWithDefault("SCHEDULE_WEEKDAY", "monday"))
	if err != nil {
		return nil, err
	}

	cfg.ScheduleHour, err = getEnvInt("SCHEDULE_HOUR", 9)
	if err != nil {
		return nil, err
	}
	if cfg.ScheduleHour < 0 || cfg.ScheduleHour > 23 {
		return nil, fmt.Errorf("SCHEDULE_HOUR must be between 0 and 23")
	}

	ttlMinutes, err := getEnvInt("PROPOSAL_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	cfg.ProposalTTL = time.Duration(ttlMinutes) * time.Minute

	// Log configuration with sensitive data redacted
	logCfg := *cfg
	if len(logCfg.BotToken) > 8 {
		logCfg.BotToken = logCfg.BotToken[:8] + "...REDACTED..."
	}
	if len(logCfg.OpenAIAPIKey) > 8 {
		logCfg.OpenAIAPIKey = logCfg.OpenAIAPIKey[:8] + "...REDACTED..."
	}
	log.Printf("Configuration loaded: %+v", logCfg)
	return cfg, nil
}

// getEnvWithDefault returns the value of the environment variable or the default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt returns the integer value of the environment variable or the default
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// parseWeekday parses a weekday name, case-insensitively
func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("SCHEDULE_WEEKDAY %q is not a weekday name", s)
}
