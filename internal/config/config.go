package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EmailConfig holds SMTP settings for alert emails.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// Enabled reports whether enough is configured to attempt delivery.
func (c EmailConfig) Enabled() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// WhatsAppConfig holds Twilio settings for WhatsApp alerts.
type WhatsAppConfig struct {
	AccountSID         string
	AuthToken          string
	FromNumber         string
	DefaultCountryCode string
}

func (c WhatsAppConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// Config is built once at startup and passed to every component that needs it.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry time.Duration
	FrontendURL string
	LogLevel    string
	Location    *time.Location

	CronSecret            string
	ReminderSchedule      string
	RunRemindersOnStartup bool
	DeliveryTimeout       time.Duration
	ScanWorkers           int
	DispatchBatch         int64
	MaxDeliveryAttempts   int

	Email    EmailConfig
	WhatsApp WhatsAppConfig
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("MONGODB_DB", "food_expiry_tracker"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: getDuration("TOKEN_EXPIRY", 7*24*time.Hour),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Location:    getLocation("TIMEZONE"),

		CronSecret:            getEnv("CRON_SECRET", ""),
		ReminderSchedule:      getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
		RunRemindersOnStartup: getBool("RUN_REMINDERS_ON_STARTUP", false),
		DeliveryTimeout:       getDuration("DELIVERY_TIMEOUT", 15*time.Second),
		ScanWorkers:           getInt("SCAN_WORKERS", 4),
		DispatchBatch:         int64(getInt("DISPATCH_BATCH", 500)),
		MaxDeliveryAttempts:   getInt("DELIVERY_MAX_ATTEMPTS", 5),

		Email: EmailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			Sender:   getEnv("SMTP_SENDER", "noreply@foodwastetracker.com"),
		},
		WhatsApp: WhatsAppConfig{
			AccountSID:         getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:          getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber:         getEnv("TWILIO_WHATSAPP_NUMBER", ""),
			DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "1"),
		},
	}

	if cfg.JWTSecret == "" {
		logrus.Warn("JWT_SECRET is empty; tokens cannot be issued")
	}
	if cfg.CronSecret == "" {
		logrus.Warn("CRON_SECRET is empty; the cron endpoint will reject every call")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid integer %q, using %d", v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logrus.WithField("key", key).Warnf("Invalid duration %q, using %s", v, fallback)
		return fallback
	}
	return d
}

func getLocation(key string) *time.Location {
	name := getEnv(key, "")
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logrus.WithError(err).Warnf("Unknown timezone %q, using local time", name)
		return time.Local
	}
	return loc
}
