package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Token    TokenConfig
	Server   ServerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// TokenConfig 票券 QR token 的簽名設定。
// Secret 不走全域變數，統一由這裡注入到 token.Codec。
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type ServerConfig struct {
	Port string
	// StoreTimeout 單次 find/tryRedeem 的上限，逾時一律視為 system_error
	StoreTimeout time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Token:    GetTokenConfig(),
		Server:   GetServerConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Database: *testConfig,
		Redis:    testRedisConfig,
		Token: TokenConfig{
			Secret: "test-secret",
			TTL:    720 * time.Hour,
		},
		Server: ServerConfig{
			Port:         "8080",
			StoreTimeout: 3 * time.Second,
		},
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetTokenConfig() TokenConfig {
	ttl, err := time.ParseDuration(getEnv("QR_TOKEN_TTL", "720h")) // 票券 30 天過期
	if err != nil {
		panic(err)
	}

	return TokenConfig{
		Secret: getEnv("QR_TOKEN_SECRET", "dev-secret-change-me"),
		TTL:    ttl,
	}
}

func GetServerConfig() ServerConfig {
	timeout, err := time.ParseDuration(getEnv("STORE_TIMEOUT", "3s"))
	if err != nil {
		panic(err)
	}

	return ServerConfig{
		Port:         getEnv("SERVER_PORT", "8080"),
		StoreTimeout: timeout,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
