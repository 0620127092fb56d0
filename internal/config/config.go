package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	portEnv     = "PORT"
	logLevelEnv = "LOG_LEVEL"
	envFileEnv  = "ENV_FILE"

	defaultPort    = "8080"
	defaultEnvFile = ".env"
)

type Config struct {
	Port     string
	LogLevel slog.Level
	Database *DatabaseConfig
	Redis    *RedisConfig
	Rule     *RuleConfig
}

// Load reads configuration from the environment. Values in a .env file (or ENV_FILE)
// fill in variables that are not already set.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	port := os.Getenv(portEnv)
	if port == "" {
		port = defaultPort
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	ruleConfig, err := LoadRuleConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:     port,
		LogLevel: ParseLogLevel(os.Getenv(logLevelEnv)),
		Database: LoadDatabaseConfig(),
		Redis:    redisConfig,
		Rule:     ruleConfig,
	}, nil
}

func loadEnvFile() error {
	path := os.Getenv(envFileEnv)
	if path == "" {
		path = defaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return godotenv.Load(path)
}

func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
