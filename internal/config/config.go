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
	Port         string
	DBDSN        string
	LogFile      string
	TemplatesDir string

	JWTSecret     string
	JWTExpiry     time.Duration
	WebhookSecret string

	DigestSchedule string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	AlertPhone       string

	AllowedOrigins string
}

// TwilioEnabled reports whether outbound alerts can be sent.
func (c Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != "" && c.AlertPhone != ""
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load reads the environment, after an optional .env file in the working
// directory. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env")
	}

	hours, err := strconv.Atoi(getenv("JWT_EXPIRY_HOURS", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Println("[config] JWT_SECRET not set; using development secret")
	}

	cfg := Config{
		Port:             getenv("PORT", "8080"),
		DBDSN:            getenv("DB_DSN", "chidi.db"), // sqlite file in project root
		LogFile:          getenv("LOG_FILE", "./chidi.log"),
		TemplatesDir:     getenv("TEMPLATES_DIR", "./web/templates"),
		JWTSecret:        secret,
		JWTExpiry:        time.Duration(hours) * time.Hour,
		WebhookSecret:    os.Getenv("WEBHOOK_SECRET"),
		DigestSchedule:   getenv("DIGEST_SCHEDULE", "0 8 * * *"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_FROM"),
		AlertPhone:       os.Getenv("ALERT_PHONE"),
		AllowedOrigins:   getenv("ALLOWED_ORIGINS", "http://localhost:3000"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s TEMPLATES_DIR=%s DIGEST_SCHEDULE=%q TWILIO=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.TemplatesDir, cfg.DigestSchedule, cfg.TwilioEnabled())
	return cfg
}
