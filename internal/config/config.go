package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	GracePeriodDays  int
	DueDayOfMonth    int
	ReminderLeadDays []int
	ReconcileCron    string
	ReminderCron     string

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTTopicPrefix string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DBConn:          getEnv("DB_CONN", "host=localhost port=5432 user=kost password=kost dbname=kost sslmode=disable"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		ReconcileCron:   getEnv("RECONCILE_CRON", "0 1 * * *"),
		ReminderCron:    getEnv("REMINDER_CRON", "0 8 * * *"),
		MQTTBrokerURL:   getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "kost-access-service"),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "kost_system"),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail:     getEnv("SENDER_EMAIL", "noreply@kost.local"),
	}

	var err error
	if cfg.GracePeriodDays, err = getEnvInt("GRACE_PERIOD_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.DueDayOfMonth, err = getEnvInt("DUE_DAY_OF_MONTH", 10); err != nil {
		return nil, err
	}
	if cfg.ReminderLeadDays, err = ParseLeadDays(getEnv("REMINDER_LEAD_DAYS", "3,2,1,0")); err != nil {
		return nil, err
	}

	if cfg.GracePeriodDays < 0 {
		return nil, fmt.Errorf("GRACE_PERIOD_DAYS must not be negative, got %d", cfg.GracePeriodDays)
	}
	if cfg.DueDayOfMonth < 1 || cfg.DueDayOfMonth > 28 {
		return nil, fmt.Errorf("DUE_DAY_OF_MONTH must be between 1 and 28, got %d", cfg.DueDayOfMonth)
	}
	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// ParseLeadDays parses a comma-separated list of reminder lead days.
func ParseLeadDays(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid lead day %q: %w", p, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("lead day must not be negative: %d", n)
		}
		days = append(days, n)
	}
	return days, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
