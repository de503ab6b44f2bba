package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
	UploadDir  string `yaml:"upload_dir"`
}

type JWTConfig struct {
	Secret       string `yaml:"secret"`
	AccessExpire int64  `yaml:"access_expire"` // seconds
}

type AuthConfig struct {
	BcryptCost       int   `yaml:"bcrypt_cost"`
	MaxLoginFailures int   `yaml:"max_login_failures"`
	LockoutSeconds   int64 `yaml:"lockout_seconds"`
}

// RateLimitConfig holds per-endpoint-class request ceilings. Windows are
// fixed: per minute for register/login/upload/global, per hour for profile.
type RateLimitConfig struct {
	RegisterPerMinute int `yaml:"register_per_minute"`
	LoginPerMinute    int `yaml:"login_per_minute"`
	UploadPerMinute   int `yaml:"upload_per_minute"`
	ProfilePerHour    int `yaml:"profile_per_hour"`
	GlobalPerMinute   int `yaml:"global_per_minute"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	JWT       JWTConfig       `yaml:"jwt"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

var GlobalConfig *Config

func InitConfig(path string) {
	data, err := os.ReadFile(path + "/config.yaml")
	if err != nil {
		log.Fatalf("Read config failed: %v", err)
	}
	if err := yaml.Unmarshal(data, &GlobalConfig); err != nil {
		log.Fatalf("Parse config failed: %v", err)
	}
	applyEnvOverrides()
	applyDefaults()
}

// applyDefaults fills zero values so a minimal config.yaml still boots with
// the documented policy (bcrypt cost 12, 5 failures, 15 min lock, 24h tokens).
func applyDefaults() {
	if GlobalConfig == nil {
		GlobalConfig = &Config{}
	}
	c := GlobalConfig
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "palette.db"
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "uploads"
	}
	if c.JWT.AccessExpire <= 0 {
		c.JWT.AccessExpire = 24 * 60 * 60
	}
	if c.Auth.BcryptCost <= 0 {
		c.Auth.BcryptCost = 12
	}
	if c.Auth.MaxLoginFailures <= 0 {
		c.Auth.MaxLoginFailures = 5
	}
	if c.Auth.LockoutSeconds <= 0 {
		c.Auth.LockoutSeconds = 15 * 60
	}
	if c.RateLimit.RegisterPerMinute <= 0 {
		c.RateLimit.RegisterPerMinute = 5
	}
	if c.RateLimit.LoginPerMinute <= 0 {
		c.RateLimit.LoginPerMinute = 10
	}
	if c.RateLimit.UploadPerMinute <= 0 {
		c.RateLimit.UploadPerMinute = 10
	}
	if c.RateLimit.ProfilePerHour <= 0 {
		c.RateLimit.ProfilePerHour = 20
	}
	if c.RateLimit.GlobalPerMinute <= 0 {
		c.RateLimit.GlobalPerMinute = 100
	}
}

func applyEnvOverrides() {
	if GlobalConfig == nil {
		return
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		GlobalConfig.Server.Port = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		GlobalConfig.Storage.SQLitePath = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		GlobalConfig.Storage.UploadDir = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		GlobalConfig.JWT.Secret = v
	}
	if v := os.Getenv("JWT_ACCESS_EXPIRE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			GlobalConfig.JWT.AccessExpire = parsed
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			GlobalConfig.Auth.BcryptCost = parsed
		}
	}
}

// EnsureJWTSecret generates random key material when none was supplied.
// Tokens issued before a restart with a regenerated secret become
// unverifiable, which is acceptable for this deployment model.
func EnsureJWTSecret() {
	if GlobalConfig.JWT.Secret != "" {
		return
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Generate JWT secret failed: %v", err)
	}
	GlobalConfig.JWT.Secret = hex.EncodeToString(buf)
	slog.Warn("jwt secret not configured, generated one for this process; tokens will not survive a restart")
}
