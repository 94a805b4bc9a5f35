package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	APIBaseURL string
	APITimeout time.Duration

	StoragePath string
	SecurityLog string
	SessionTTL  time.Duration

	TLSEnabled bool
	TLSPort    string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SupportEmail string
}

// LoadConfig reads .env when it exists and falls back to the process
// environment otherwise.
func LoadConfig() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Error loading .env file:", err)
		} else {
			log.Println("✅ .env file loaded successfully")
		}
	} else {
		log.Println("🌐 Using system environment variables")
	}

	return &Config{
		Port:       getEnv("PORT", "8080"),
		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		APITimeout: getDuration("API_TIMEOUT", 15*time.Second),

		StoragePath: getEnv("STORAGE_PATH", "./client_storage.json"),
		SecurityLog: getEnv("SECURITY_LOG", "security.log"),
		SessionTTL:  getDuration("SESSION_TTL", 30*time.Minute),

		TLSEnabled: getBool("TLS_ENABLED", false),
		TLSPort:    getEnv("TLS_PORT", "8443"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		SupportEmail: getEnv("SUPPORT_EMAIL", "hello@lunara.com"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("⚠️ Invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return b
}
