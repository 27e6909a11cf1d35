package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	ServicePort      string
	MetricsPort      string
	LogLevel         zerolog.Level
	Store            string
	StoreTimeout     time.Duration
	PostgreSQLConfig PostgreSQLConfig
	JWTSecret        string
	KafkaConfig      KafkaConfig
	TracingConfig    TracingConfig
}

type PostgreSQLConfig struct {
	DBHost       string
	DBPort       string
	DBName       string
	DBUsername   string
	DBPassword   string
	SSLMode      string
	MaxOpenConns int
}

type KafkaConfig struct {
	BrokerAddress   string
	BrokerTopic     string
	BrokerPartition int
}

type TracingConfig struct {
	CollectorHost string
}

// CreateNewConfig loads .env when present, then reads the environment.
func CreateNewConfig() *Config {
	godotenv.Load(".env")

	conf := Config{
		ServicePort:  getEnv("SERVICE_PORT", "9091"),
		MetricsPort:  getEnv("METRICS_PORT", "9092"),
		LogLevel:     parseLevel(os.Getenv("LOG_LEVEL")),
		Store:        getEnv("STORE", StoreMemory),
		StoreTimeout: getDuration("STORE_TIMEOUT", 3*time.Second),
		PostgreSQLConfig: PostgreSQLConfig{
			DBHost:       getEnv("DB_HOST", "localhost"),
			DBPort:       getEnv("DB_PORT", "5432"),
			DBName:       getEnv("DB_NAME", "afrilink"),
			DBUsername:   getEnv("DB_USERNAME", "postgres"),
			DBPassword:   os.Getenv("DB_PASSWORD"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 10),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		KafkaConfig: KafkaConfig{
			BrokerAddress:   os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:     getEnv("BROKER_TOPIC", "product-events"),
			BrokerPartition: getInt("BROKER_PARTITION", 0),
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
	}

	return &conf
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
