package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config 애플리케이션 설정
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	CORS       CORSConfig       `yaml:"cors"`
	Moderation ModerationConfig `yaml:"moderation"`
	Export     ExportConfig     `yaml:"export"`
	Cache      CacheConfig      `yaml:"cache"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Bootstrap  BootstrapConfig  `yaml:"bootstrap"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port     int    `yaml:"port"`
	Mode     string `yaml:"mode"` // development | production
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig MySQL 설정
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// GetDSN builds the MySQL DSN
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

// RedisConfig Redis 설정 (Host 가 비어 있으면 Redis 없이 동작)
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig 토큰 설정
type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // seconds
}

// CORSConfig CORS 설정
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// ModerationConfig AI 모더레이션 설정
type ModerationConfig struct {
	URL            string        `yaml:"url"`
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	Timeout        time.Duration `yaml:"timeout"`
	BlindThreshold int           `yaml:"blind_threshold"`
}

// ExportConfig 엑셀 내보내기 설정
type ExportConfig struct {
	Label     string `yaml:"label"`
	SheetName string `yaml:"sheet_name"`
}

// CacheConfig 기준정보 캐시 설정
type CacheConfig struct {
	LookupTTL time.Duration `yaml:"lookup_ttl"`
}

// RateLimitConfig 요청 제한 설정
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// BootstrapConfig 최초 관리자 계정 (관리자가 한 명도 없을 때만 생성)
type BootstrapConfig struct {
	AdminEmployeeID string `yaml:"admin_employee_id"`
	AdminName       string `yaml:"admin_name"`
	AdminPassword   string `yaml:"admin_password"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Mode: "development", Timezone: "Asia/Seoul"},
		Database: DatabaseConfig{
			Host: "localhost", Port: 3306, User: "opinion", DBName: "opinion",
			MaxIdleConns: 10, MaxOpenConns: 50, ConnMaxLifetime: 3600,
		},
		Redis:      RedisConfig{Port: 6379, PoolSize: 10},
		JWT:        JWTConfig{ExpiresIn: 8 * 3600},
		CORS:       CORSConfig{AllowOrigins: "http://localhost:3000"},
		Moderation: ModerationConfig{Model: "gpt-4o-mini", Timeout: 20 * time.Second, BlindThreshold: domain.DefaultBlindThreshold},
		Export:     ExportConfig{Label: "의견목록", SheetName: "의견목록"},
		Cache:      CacheConfig{LookupTTL: 5 * time.Minute},
		RateLimit:  RateLimitConfig{Enabled: true, RequestsPerMinute: 60},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies env overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config 파싱 실패 (%s): %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("config file %s not found, using defaults", path)
	default:
		return nil, fmt.Errorf("config 읽기 실패 (%s): %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Moderation.BlindThreshold <= 0 {
		cfg.Moderation.BlindThreshold = domain.DefaultBlindThreshold
	}
	if cfg.Moderation.Timeout <= 0 {
		cfg.Moderation.Timeout = 20 * time.Second
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Mode, "APP_MODE")
	setString(&cfg.Server.Timezone, "APP_TIMEZONE")
	setInt(&cfg.Server.Port, "SERVER_PORT")

	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")

	setString(&cfg.Moderation.URL, "MODERATION_URL")
	setString(&cfg.Moderation.APIKey, "MODERATION_API_KEY")
	setString(&cfg.Moderation.Model, "MODERATION_MODEL")
	setInt(&cfg.Moderation.BlindThreshold, "MODERATION_BLIND_THRESHOLD")

	setString(&cfg.Bootstrap.AdminEmployeeID, "ADMIN_EMPLOYEE_ID")
	setString(&cfg.Bootstrap.AdminName, "ADMIN_NAME")
	setString(&cfg.Bootstrap.AdminPassword, "ADMIN_PASSWORD")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("ignoring %s=%q: not an integer", key, v)
		return
	}
	*dst = n
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Mode == "" || c.Server.Mode == "development" || c.Server.Mode == "local"
}

// Location returns the configured time zone (falls back to KST)
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Server.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}

// LogResolved logs the effective configuration with secrets masked
func LogResolved(cfg *Config) {
	logger.GetLogger().Info().
		Int("port", cfg.Server.Port).
		Str("mode", cfg.Server.Mode).
		Str("timezone", cfg.Server.Timezone).
		Str("db", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)).
		Str("redis", redisAddr(cfg.Redis)).
		Str("jwt_secret", mask(cfg.JWT.Secret)).
		Str("moderation_url", cfg.Moderation.URL).
		Str("moderation_key", mask(cfg.Moderation.APIKey)).
		Int("blind_threshold", cfg.Moderation.BlindThreshold).
		Msg("config resolved")
}

func redisAddr(r RedisConfig) string {
	if r.Host == "" {
		return "disabled"
	}
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
