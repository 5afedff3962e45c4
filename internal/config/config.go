package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	AuthJWTSecret string        `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer    string        `mapstructure:"AUTH_ISSUER"`
	AuthTokenTTL  time.Duration `mapstructure:"AUTH_TOKEN_TTL"`

	// --- Media ---
	MediaSigningSecret string `mapstructure:"MEDIA_SIGNING_SECRET"`
	MediaStorageDir    string `mapstructure:"MEDIA_STORAGE_DIR"`
	MediaPlaybackTTL   int64  `mapstructure:"MEDIA_PLAYBACK_TTL_SECONDS"`
}

// String реализует интерфейс Stringer
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
	sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
	sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
	sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
	sb.WriteString(fmt.Sprintf("  DBScheme: %s\n", c.DBScheme))

	// пароли и секреты маскируем
	if c.DBPassword != "" {
		sb.WriteString("  DBPassword: ********\n")
	} else {
		sb.WriteString("  DBPassword: (empty)\n")
	}

	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))

	if c.AuthJWTSecret != "" {
		sb.WriteString("  AuthJWTSecret: ********\n")
	} else {
		sb.WriteString("  AuthJWTSecret: (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("  AuthIssuer: %s\n", c.AuthIssuer))
	sb.WriteString(fmt.Sprintf("  AuthTokenTTL: %s\n", c.AuthTokenTTL))

	if c.MediaSigningSecret != "" {
		sb.WriteString("  MediaSigningSecret: ********\n")
	} else {
		sb.WriteString("  MediaSigningSecret: (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("  MediaStorageDir: %s\n", c.MediaStorageDir))
	sb.WriteString(fmt.Sprintf("  MediaPlaybackTTL: %ds\n", c.MediaPlaybackTTL))

	return sb.String()
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	// Регистрируем интересующие ключи окружения
	keys := []string{
		"APP_ENV", "APP_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEME",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
		"AUTH_JWT_SECRET", "AUTH_ISSUER", "AUTH_TOKEN_TTL",
		"MEDIA_SIGNING_SECRET", "MEDIA_STORAGE_DIR", "MEDIA_PLAYBACK_TTL_SECONDS",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Значения по умолчанию (секреты умышленно без дефолтов)
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("AUTH_ISSUER", "media-gate")
	v.SetDefault("AUTH_TOKEN_TTL", "24h")
	v.SetDefault("MEDIA_STORAGE_DIR", "./uploads")
	v.SetDefault("MEDIA_PLAYBACK_TTL_SECONDS", 600)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Секреты обязательны: без них сервис не стартует
	if strings.TrimSpace(cfg.MediaSigningSecret) == "" {
		return nil, errors.New("MEDIA_SIGNING_SECRET is required")
	}
	if strings.TrimSpace(cfg.AuthJWTSecret) == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	return &cfg, nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
