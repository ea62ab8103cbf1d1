package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env    string
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Near   NearConfig
	JWT    JWTConfig
	Auth   AuthConfig
	Log    LogConfig
}

type ServerConfig struct {
	HTTPPort     int
	Domain       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	Brokers          []string
	ProducerRetryMax int
	Enabled          bool
	ConsumerGroupID  string
}

// NearConfig describes how the service talks to the NEAR network. The
// archival endpoint is required for transaction-status lookups because
// regular nodes garbage-collect old receipts.
type NearConfig struct {
	RPCURL         string
	ArchivalRPCURL string
	ContractID     string
	RequestTimeout time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type AuthConfig struct {
	WebhookToken            string
	FirebaseCredentialsFile string
	OTPTTL                  time.Duration
}

type LogConfig struct {
	Level    string
	Mode     string
	Encoding string
}

func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			HTTPPort:     getEnvAsInt("SERVER_HTTP_PORT", 8080),
			Domain:       getEnv("DOMAIN", "theround.example"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DATABASE", "marketplace"),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Kafka: KafkaConfig{
			Brokers:          getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			ProducerRetryMax: getEnvAsInt("KAFKA_PRODUCER_RETRY_MAX", 3),
			Enabled:          getEnvAsBool("KAFKA_ENABLED", true),
			ConsumerGroupID:  getEnv("KAFKA_CONSUMER_GROUP_ID", "marketplace-service"),
		},
		Near: NearConfig{
			RPCURL:         getEnv("NEAR_RPC_URL", "https://rpc.testnet.near.org"),
			ArchivalRPCURL: getEnv("NEAR_ARCHIVAL_RPC_URL", "https://archival-rpc.testnet.near.org"),
			ContractID:     getEnv("NEAR_CONTRACT_ID", "round.testnet"),
			RequestTimeout: getEnvAsDuration("NEAR_REQUEST_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 7*24*time.Hour),
		},
		Auth: AuthConfig{
			WebhookToken:            getEnv("WEBHOOK_BEARER_TOKEN", ""),
			FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			OTPTTL:                  getEnvAsDuration("OTP_TTL", 30*time.Second),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Mode:     getEnv("LOG_MODE", "development"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.HTTPPort)
	}

	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo URI is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.Near.RPCURL == "" || c.Near.ArchivalRPCURL == "" {
		return fmt.Errorf("NEAR RPC endpoints are required")
	}

	if c.Near.ContractID == "" {
		return fmt.Errorf("NEAR contract account is required")
	}

	// Session tokens and the webhook depend on these secrets; refuse to
	// start a production process without them.
	if c.Env == "production" {
		if c.JWT.Secret == "" || c.JWT.Secret == "change-me" {
			return fmt.Errorf("JWT secret must be set in production")
		}
		if c.Auth.WebhookToken == "" {
			return fmt.Errorf("webhook bearer token must be set in production")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
