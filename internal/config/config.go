package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Base de datos
	PGHost          string
	PGPort          int
	PGUser          string
	PGPassword      string
	PGDatabase      string
	SQLitePath      string
	LocalDeployment bool

	// Archivos (PDFs de actas, lotes generados, fotos)
	DataDir string

	// SMTP
	SMTPHost   string
	SMTPPort   int
	SMTPSecure bool
	MailFrom   string
	// Destinatario por defecto cuando la request no indica email
	MailDefaultTo string

	// Cache
	RedisAddr string
	CacheTTL  time.Duration

	// Eventos
	UseKafka     bool
	KafkaBrokers []string
	KafkaTopic   string

	HTTPPort string
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getEnvInt := func(key string, fallback int) int {
		if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
			return v
		}
		return fallback
	}
	getEnvBool := func(key string, fallback bool) bool {
		if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
			return v
		}
		return fallback
	}

	return &Config{
		PGHost:          getEnv("PGHOST", "localhost"),
		PGPort:          getEnvInt("PGPORT", 5432),
		PGUser:          getEnv("PGUSER", "postgres"),
		PGPassword:      getEnv("PGPASSWORD", ""),
		PGDatabase:      getEnv("PGDATABASE", "actas"),
		SQLitePath:      getEnv("SQLITE_PATH", "./actas.db"),
		LocalDeployment: getEnvBool("LOCAL_DEPLOYMENT", false),

		DataDir: getEnv("DATA_DIR", "/data"),

		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPSecure:    getEnvBool("SMTP_SECURE", false),
		MailFrom:      getEnv("MAIL_FROM", "no-reply@seguridadvial.local"),
		MailDefaultTo: getEnv("MAIL_DEFAULT_TO", "mailejemplo@gmail.com"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  5 * time.Minute,

		UseKafka:     getEnvBool("USE_KAFKA", false),
		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "acta-events"),

		HTTPPort: getEnv("HTTP_PORT", "3000"),
	}
}
