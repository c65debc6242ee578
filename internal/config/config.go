package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// BookingConfig tunes the sliding-window limiter on booking submissions.
type BookingConfig struct {
	RateLimit       int
	RateLimitWindow time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080"
	}

	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: serverHost,
		Port: serverPort,
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPortStr := os.Getenv("POSTGRES_PORT")
	if postgresPortStr == "" {
		postgresPortStr = "5432"
	}

	postgresPort, err := strconv.Atoi(postgresPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     postgresHost,
		Port:     postgresPort,
		SSLMode:  postgresSSLMode,
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisCfg := RedisConfig{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("%s: missing JWT_SECRET", op)
	}

	tokenTTL := 24 * time.Hour
	if ttlStr := os.Getenv("JWT_TTL"); ttlStr != "" {
		tokenTTL, err = time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid JWT_TTL: %w", op, err)
		}
	}

	jwtCfg := JWTConfig{
		Secret:   jwtSecret,
		TokenTTL: tokenTTL,
	}

	rateLimit := 30
	if rlStr := os.Getenv("BOOKING_RATE_LIMIT"); rlStr != "" {
		rateLimit, err = strconv.Atoi(rlStr)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid BOOKING_RATE_LIMIT: %w", op, err)
		}
	}

	rateWindow := time.Minute
	if rwStr := os.Getenv("BOOKING_RATE_WINDOW"); rwStr != "" {
		rateWindow, err = time.ParseDuration(rwStr)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid BOOKING_RATE_WINDOW: %w", op, err)
		}
	}

	bookingCfg := BookingConfig{
		RateLimit:       rateLimit,
		RateLimitWindow: rateWindow,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		JWT:      jwtCfg,
		Booking:  bookingCfg,
	}, nil
}
