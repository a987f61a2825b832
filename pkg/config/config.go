package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Safety   SafetyConfig
	OTEL     OTELConfig
	Env      string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ProviderConfig holds configuration for one generative-text backend
type ProviderConfig struct {
	APIKey      string
	Model       string
	Endpoint    string
	Temperature float64
	MaxTokens   int
}

// AIConfig holds AI orchestration configuration
type AIConfig struct {
	PrimaryProvider     string
	FallbackEnabled     bool
	HistoryWindow       int
	CallTimeoutSeconds  int
	ProbeTimeoutSeconds int
	SummaryWorkers      int
	Gemini              ProviderConfig
	HuggingFace         ProviderConfig
}

// SafetyConfig holds deterministic safety-layer configuration
type SafetyConfig struct {
	EmergencyKeywords string
	RulesPath         string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "medassist"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		AI: AIConfig{
			PrimaryProvider:     getEnv("AI_PRIMARY_PROVIDER", "gemini"),
			FallbackEnabled:     getEnvAsBool("AI_FALLBACK_ENABLED", true),
			HistoryWindow:       getEnvAsInt("AI_HISTORY_WINDOW", 6),
			CallTimeoutSeconds:  getEnvAsInt("AI_CALL_TIMEOUT_SECONDS", 30),
			ProbeTimeoutSeconds: getEnvAsInt("AI_PROBE_TIMEOUT_SECONDS", 10),
			SummaryWorkers:      getEnvAsInt("AI_SUMMARY_WORKERS", 2),
			Gemini: ProviderConfig{
				APIKey:      getEnv("GEMINI_API_KEY", ""),
				Model:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
				Endpoint:    getEnv("GEMINI_ENDPOINT", ""),
				Temperature: getEnvAsFloat("GEMINI_TEMPERATURE", 0.3),
				MaxTokens:   getEnvAsInt("GEMINI_MAX_TOKENS", 1024),
			},
			HuggingFace: ProviderConfig{
				APIKey:      getEnv("HF_API_KEY", ""),
				Model:       getEnv("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.3"),
				Endpoint:    getEnv("HF_ENDPOINT", ""),
				Temperature: getEnvAsFloat("HF_TEMPERATURE", 0.3),
				MaxTokens:   getEnvAsInt("HF_MAX_TOKENS", 1024),
			},
		},
		Safety: SafetyConfig{
			EmergencyKeywords: getEnv("AI_EMERGENCY_KEYWORDS", defaultEmergencyKeywords),
			RulesPath:         getEnv("SAFETY_RULES_PATH", "config/drug_safety_rules.json"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "medassist"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}, nil
}

const defaultEmergencyKeywords = "chest pain,difficulty breathing,shortness of breath,unconscious,severe bleeding,stroke,anaphylaxis,suicidal"

// EmergencyKeywordList returns the configured emergency keywords, trimmed,
// lower-cased, with empty entries dropped.
func (c *SafetyConfig) EmergencyKeywordList() []string {
	parts := strings.Split(c.EmergencyKeywords, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		k := strings.ToLower(strings.TrimSpace(p))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
