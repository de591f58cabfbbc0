package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Env  string `mapstructure:"APP_ENV"`
	Port string `mapstructure:"PORT"`

	DBDriver   string `mapstructure:"DB_DRIVER"` // "postgres" | "sqlite"
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	JWTSecret string `mapstructure:"JWT_SECRET"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	TimeZone       string `mapstructure:"TIMEZONE"`

	PictureStore string `mapstructure:"PICTURE_STORE"` // "db" | "s3"
	S3Bucket     string `mapstructure:"S3_BUCKET"`
	S3Region     string `mapstructure:"S3_REGION"`

	LoginRatePerMinute int `mapstructure:"LOGIN_RATE_PER_MINUTE"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "nutrition")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "database.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("PICTURE_STORE", "db")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)

	var cfg Config
	// AutomaticEnv only resolves keys viper already knows, which SetDefault
	// guarantees for every field above.
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.PictureStore {
	case "db":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when PICTURE_STORE=s3")
		}
	default:
		return fmt.Errorf("unsupported PICTURE_STORE %q", c.PictureStore)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be a non-default value of at least 32 characters in production")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" || c.Env == "prod" }

// Location is the calendar used for day boundaries in all aggregations.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}
