package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET is not set in environment")
	ErrMissingValue  = errors.New("required variable is not set in environment")
)

type Config struct {
	Port        string
	JWTSecret   string
	MySQLDSN    string
	MongoURI    string
	MongoDBName string
	StaticDir   string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
	TrustProxy  bool
}

// Load reads the environment, optionally seeded from an env file. START names
// the file to use (for example .env-local or .env.docker) and must exist when
// set; otherwise a .env in the working directory is loaded if present.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getenv("PORT", "5000"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		MySQLDSN:    os.Getenv("MYSQL_DSN"),
		MongoURI:    os.Getenv("MONGO_URI"),
		MongoDBName: os.Getenv("MONGO_DB_NAME"),
		StaticDir:   getenv("STATIC_DIR", "./frontend"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "text"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "*")),
	}

	if raw := os.Getenv("TRUST_PROXY"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUST_PROXY: %w", err)
		}
		cfg.TrustProxy = v
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	for name, val := range map[string]string{
		"MYSQL_DSN":     cfg.MySQLDSN,
		"MONGO_URI":     cfg.MongoURI,
		"MONGO_DB_NAME": cfg.MongoDBName,
	} {
		if val == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingValue)
		}
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func loadEnvFile() error {
	if file := os.Getenv("START"); file != "" {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("env file %s: %w", file, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("env file .env: %w", err)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
