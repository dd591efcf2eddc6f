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
	APIPort   string
	AppEnv    string
	StaticDir string

	JWTKey            []byte
	SessionCookieName string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSslMode      string
	DBConnStr      string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	EngineBackend    string // "local" or "nats"
	NatsURL          string
	TranspilerCmd    []string
	ExecutorCmd      []string
	SandboxContainer string
	ExecutionTimeout time.Duration
	ExecutionWorkers int
	MaxUploadBytes   int64
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current process environment without touching .env files.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:           getEnv("API_PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "production"),
		StaticDir:         getEnv("STATIC_DIR", ""),
		JWTKey:            []byte(getEnv("JWT_SECRET", "defaultsecret")),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "hapy_session"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "user"),
		DBPassword:        getEnv("DB_PASSWORD", "password"),
		DBName:            getEnv("DB_NAME", "hapyland"),
		DBSslMode:         getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetime:    time.Duration(getEnvAsInt("DB_CONN_LIFETIME_MINUTES", 5)) * time.Minute,

		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),

		EngineBackend:    getEnv("ENGINE_BACKEND", "local"),
		NatsURL:          getEnv("NATS_URL", "nats://localhost:4222"),
		TranspilerCmd:    strings.Fields(getEnv("TRANSPILER_CMD", "hapy transpile -")),
		ExecutorCmd:      strings.Fields(getEnv("EXECUTOR_CMD", "python3 -")),
		SandboxContainer: getEnv("SANDBOX_CONTAINER", ""),
		ExecutionTimeout: time.Duration(getEnvAsPositiveInt("EXECUTION_TIMEOUT_SECONDS", 10)) * time.Second,
		ExecutionWorkers: getEnvAsPositiveInt("EXECUTION_WORKERS", 4),
		MaxUploadBytes:   int64(getEnvAsPositiveInt("MAX_UPLOAD_BYTES", 1<<20)),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsPositiveInt falls back for values that would disable a limit.
func getEnvAsPositiveInt(key string, fallback int) int {
	if value := getEnvAsInt(key, fallback); value > 0 {
		return value
	}
	return fallback
}
