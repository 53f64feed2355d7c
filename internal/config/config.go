package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds everything the server reads from the environment.
type Settings struct {
	Env      string
	Port     string
	LogLevel string

	JWTSecret           string
	AccessTokenLifetime time.Duration

	DefaultWalletMoney   int64
	DefaultPaymentOption string

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUsername string
	ScyllaPassword string
	ScyllaTimeout  time.Duration

	RedisHost     string
	RedisPassword string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	ImageURLTTL    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	CORSOrigins []string
}

// Load reads .env when present and falls back to the process environment.
func Load() *Settings {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment")
	} else {
		log.Println("✅ .env loaded")
	}
	return FromEnv()
}

// FromEnv builds Settings from the current environment without touching .env.
func FromEnv() *Settings {
	return &Settings{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8082"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:           getEnv("JWT_SECRET", "thisisasamplesecret"),
		AccessTokenLifetime: time.Duration(getInt("JWT_ACCESS_EXPIRATION_MINUTES", 240)) * time.Minute,

		DefaultWalletMoney:   int64(getInt("DEFAULT_WALLET_MONEY", 500)),
		DefaultPaymentOption: getEnv("DEFAULT_PAYMENT_OPTION", "PAYMENT_OPTION_DEFAULT"),

		ScyllaHosts:    splitList(os.Getenv("SCYLLA_HOSTS")),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "kart"),
		ScyllaUsername: os.Getenv("SCYLLA_USERNAME"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),
		ScyllaTimeout:  time.Duration(getInt("SCYLLA_TIMEOUT_SECONDS", 5)) * time.Second,

		RedisHost:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),
		ElasticIndex:    getEnv("ELASTIC_INDEX", "products"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "kart-images"),
		MinIOUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		ImageURLTTL:    time.Duration(getInt("IMAGE_URL_TTL_MINUTES", 60)) * time.Minute,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@kart.local"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}
}

func (s *Settings) IsProduction() bool {
	return s.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a number, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
