package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppDirName is the directory created under the user config dir when DATA_DIR is unset.
const AppDirName = "DiaryKeeper"

type Config struct {
	Host        string
	Port        string
	Environment string
	DataDir     string
	CORSOrigins string
	LockTimeout time.Duration
	// Logging
	LogDir      string
	LogMaxFiles int
	// Bridge session auth
	BridgeAuth   bool
	BridgeSecret string
	SessionTTL   time.Duration // zero: the token lives as long as the process
	// Host theme
	SystemDarkMode bool
	// Off-site copy of created backups (disabled when endpoint is empty)
	Mirror MirrorConfig
}

// MirrorConfig describes an S3-compatible bucket that receives a copy of every backup.
type MirrorConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket"`
	Region          string `yaml:"region"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// Enabled reports whether a mirror endpoint and bucket are configured.
func (m MirrorConfig) Enabled() bool {
	return m.Endpoint != "" && m.BucketName != ""
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE.
type fileConfig struct {
	Host           string       `yaml:"host"`
	Port           string       `yaml:"port"`
	Environment    string       `yaml:"environment"`
	DataDir        string       `yaml:"data_dir"`
	CORSOrigins    []string     `yaml:"cors_origins"`
	LockTimeout    string       `yaml:"lock_timeout"`
	LogDir         string       `yaml:"log_dir"`
	LogMaxFiles    int          `yaml:"log_max_files"`
	BridgeAuth     *bool        `yaml:"bridge_auth"`
	SessionTTL     string       `yaml:"session_ttl"`
	SystemDarkMode *bool        `yaml:"system_dark_mode"`
	Mirror         MirrorConfig `yaml:"mirror"`
}

// Load builds the configuration from defaults, the optional CONFIG_FILE
// YAML overlay and environment variables, in that order.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Host:        "127.0.0.1",
		Port:        "5174",
		Environment: "dev",
		DataDir:     defaultDataDir(),
		CORSOrigins: "http://localhost:5173",
		LockTimeout: 5 * time.Second,
		LogMaxFiles: 10,
		BridgeAuth:  true,
		Mirror:      MirrorConfig{Region: "us-east-1"},
	}
}

// defaultDataDir mirrors the per-user application data location of desktop apps.
func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(base, AppDirName)
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Host, fc.Host)
	setString(&c.Port, fc.Port)
	setString(&c.Environment, fc.Environment)
	setString(&c.DataDir, fc.DataDir)
	setString(&c.LogDir, fc.LogDir)
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = strings.Join(fc.CORSOrigins, ",")
	}
	if fc.LogMaxFiles > 0 {
		c.LogMaxFiles = fc.LogMaxFiles
	}
	if fc.BridgeAuth != nil {
		c.BridgeAuth = *fc.BridgeAuth
	}
	if fc.SystemDarkMode != nil {
		c.SystemDarkMode = *fc.SystemDarkMode
	}
	if fc.LockTimeout != "" {
		d, err := time.ParseDuration(fc.LockTimeout)
		if err != nil {
			return fmt.Errorf("lock_timeout: %w", err)
		}
		c.LockTimeout = d
	}
	if fc.SessionTTL != "" {
		d, err := time.ParseDuration(fc.SessionTTL)
		if err != nil {
			return fmt.Errorf("session_ttl: %w", err)
		}
		c.SessionTTL = d
	}

	setString(&c.Mirror.Endpoint, fc.Mirror.Endpoint)
	setString(&c.Mirror.AccessKeyID, fc.Mirror.AccessKeyID)
	setString(&c.Mirror.SecretAccessKey, fc.Mirror.SecretAccessKey)
	setString(&c.Mirror.BucketName, fc.Mirror.BucketName)
	setString(&c.Mirror.Region, fc.Mirror.Region)
	c.Mirror.UseSSL = c.Mirror.UseSSL || fc.Mirror.UseSSL
	return nil
}

func (c *Config) applyEnv() error {
	c.Host = getEnv("HOST", c.Host)
	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)
	c.BridgeSecret = getEnv("BRIDGE_SECRET", c.BridgeSecret)

	var err error
	if c.LogMaxFiles, err = getEnvInt("LOG_MAX_FILES", c.LogMaxFiles); err != nil {
		return err
	}
	if c.LockTimeout, err = getEnvDuration("LOCK_TIMEOUT", c.LockTimeout); err != nil {
		return err
	}
	if c.SessionTTL, err = getEnvDuration("SESSION_TTL", c.SessionTTL); err != nil {
		return err
	}
	if c.BridgeAuth, err = getEnvBool("BRIDGE_AUTH", c.BridgeAuth); err != nil {
		return err
	}
	if c.SystemDarkMode, err = getEnvBool("SYSTEM_DARK_MODE", c.SystemDarkMode); err != nil {
		return err
	}

	c.Mirror.Endpoint = getEnv("BACKUP_MIRROR_ENDPOINT", c.Mirror.Endpoint)
	c.Mirror.AccessKeyID = getEnv("BACKUP_MIRROR_ACCESS_KEY", c.Mirror.AccessKeyID)
	c.Mirror.SecretAccessKey = getEnv("BACKUP_MIRROR_SECRET_KEY", c.Mirror.SecretAccessKey)
	c.Mirror.BucketName = getEnv("BACKUP_MIRROR_BUCKET", c.Mirror.BucketName)
	c.Mirror.Region = getEnv("BACKUP_MIRROR_REGION", c.Mirror.Region)
	if c.Mirror.UseSSL, err = getEnvBool("BACKUP_MIRROR_SSL", c.Mirror.UseSSL); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address of the bridge server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// IsProd reports whether the process runs with production settings.
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
