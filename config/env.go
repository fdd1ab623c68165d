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
	Redis    RedisConfig
	DB       DBConfig
	Auth     AuthConfig
	Ordering OrderingConfig
	Gateway  GatewayConfig
}

type DBConfig struct {
	DSN string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type OrderingConfig struct {
	GRPCAddr    string
	Port        string
	PaymentURL  string
	CheckoutTTL time.Duration
}

type GatewayConfig struct {
	HTTPPort        string
	ClientStore     string
	ClientStoreTTL  time.Duration
	RateLimit       string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	DiscountTimeout time.Duration
	HistoryLimit    int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			DSN: getEnv("ORDERING_DSN", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDuration("JWT_TTL", 24*time.Hour),
		},
		Ordering: OrderingConfig{
			GRPCAddr:    getEnv("ORDERING_SERVICE_URL", "localhost:50054"),
			Port:        getEnv("ORDERING_GRPC_PORT", "50054"),
			PaymentURL:  getEnv("PAYMENT_URL", "http://localhost:3000/checkout/pay"),
			CheckoutTTL: getDuration("CHECKOUT_TTL", 30*time.Minute),
		},
		Gateway: GatewayConfig{
			HTTPPort:        getEnv("HTTP_PORT", "8080"),
			ClientStore:     getEnv("CLIENT_STORE", "redis"),
			ClientStoreTTL:  getDuration("CLIENT_STORE_TTL", 7*24*time.Hour),
			RateLimit:       getEnv("RATE_LIMIT", "100-M"),
			AllowedOrigins:  getList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RequestTimeout:  getDuration("REQUEST_TIMEOUT", 5*time.Second),
			DiscountTimeout: getDuration("DISCOUNT_TIMEOUT", 3*time.Second),
			HistoryLimit:    getInt("DELIVERED_HISTORY_LIMIT", 50),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
