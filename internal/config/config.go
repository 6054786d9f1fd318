package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Consul   ConsulConfig
	Grading  GradingConfig
}

type ServerConfig struct {
	Port           string
	ServiceName    string
	ServiceAddress string
	ServiceID      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type ConsulConfig struct {
	Address string
}

type GradingConfig struct {
	DefaultPassingScore     int
	DefaultMaxAttempts      int
	SupervisorRatingDefault float64
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "6680"),
			ServiceName:    getEnv("ASSESSMENT_SERVICE_NAME", "assessment-service"),
			ServiceAddress: getEnv("ASSESSMENT_SERVICE_ADDRESS", "assessment-service"),
			ServiceID:      getEnv("ASSESSMENT_SERVICE_NAME", "assessment-service") + "-" + getEnv("HOSTNAME", "assessment"),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("ASSESSMENT_SERVICE_MONGO_DB", "assessment_service"),
			Timeout:  getEnvAsDuration("MONGODB_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("TEST_CACHE_TTL", 5*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", ""),
		},
		Consul: ConsulConfig{
			Address: getEnv("CONSUL_ADDRESS", ""),
		},
		Grading: GradingConfig{
			DefaultPassingScore:     getEnvAsInt("DEFAULT_PASSING_SCORE", 70),
			DefaultMaxAttempts:      getEnvAsInt("DEFAULT_MAX_ATTEMPTS", 3),
			SupervisorRatingDefault: getEnvAsFloat("SUPERVISOR_RATING_DEFAULT", 3.5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid int for %s: %q, using default %d", key, raw, fallback)
		return fallback
	}
	return value
}

func getEnvAsFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Invalid float for %s: %q, using default %f", key, raw, fallback)
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default %s", key, raw, fallback)
		return fallback
	}
	return value
}
