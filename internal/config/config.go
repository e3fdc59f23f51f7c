package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort            = 8000
	defaultEnv             = "development"
	defaultAPIPrefix       = "/api/v1"
	defaultLogLevel        = "info"
	defaultStorageDriver   = DriverMongo
	defaultMongoURL        = "mongodb://localhost:27017"
	defaultDatabaseName    = "chat_summarization"
	defaultRequestsPerMin  = 60
	defaultTokenExpireMins = 30
	defaultLLMTimeout      = 60 * time.Second
	defaultStubDelay       = 500 * time.Millisecond
	defaultSecretKey       = "chat-insight-secret-change-me"
)

// Storage drivers accepted by storage.driver.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// AppConfig holds runtime configuration. It is built once at startup and
// passed explicitly to every component that needs it.
type AppConfig struct {
	Port                     int
	Env                      string
	APIPrefix                string
	LogLevel                 string
	LogDir                   string
	Storage                  StorageConfig
	RedisURL                 string
	RateLimit                RateLimitConfig
	AllowedOrigins           []string
	TrustedProxies           []string // proxy IPs/CIDRs allowed to set X-Forwarded-For; empty trusts none
	SecretKey                string
	AccessTokenExpireMinutes int
	LLM                      LLMConfig
}

// StorageConfig selects and locates the message store.
type StorageConfig struct {
	Driver   string
	MongoURL string
	Database string
	// DSN is the gorm data source for the mysql and sqlite drivers.
	DSN string
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// LLMConfig configures the insight providers.
type LLMConfig struct {
	// Provider is the default provider name used when a request names none.
	Provider  string
	Timeout   time.Duration
	StubDelay time.Duration
	Grok      ProviderConfig
	Gemini    ProviderConfig
	Claude    ProviderConfig
}

// ProviderConfig is the credential and endpoint of one remote model.
type ProviderConfig struct {
	APIKey   string
	Endpoint string
	Model    string
}

// Configured reports whether the provider has a credential.
func (p ProviderConfig) Configured() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

type rawAppConfig struct {
	Port                     int              `yaml:"port"`
	Env                      string           `yaml:"env"`
	Debug                    *bool            `yaml:"debug"`
	APIPrefix                string           `yaml:"api_prefix"`
	Log                      rawLogConfig     `yaml:"log"`
	LogLevel                 string           `yaml:"log_level"`
	Storage                  rawStorageConfig `yaml:"storage"`
	MongoDBURL               string           `yaml:"mongodb_url"`
	DBName                   string           `yaml:"db_name"`
	RedisURL                 string           `yaml:"redis_url"`
	RateLimit                rawRateLimit     `yaml:"rate_limit"`
	AllowedOrigins           []string         `yaml:"allowed_origins"`
	TrustedProxies           []string         `yaml:"trusted_proxies"`
	SecretKey                string           `yaml:"secret_key"`
	AccessTokenExpireMinutes int              `yaml:"access_token_expire_minutes"`
	LLM                      rawLLMConfig     `yaml:"llm"`
}

type rawLogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type rawStorageConfig struct {
	Driver   string `yaml:"driver"`
	MongoURL string `yaml:"mongo_url"`
	Database string `yaml:"database"`
	DSN      string `yaml:"dsn"`
}

type rawRateLimit struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type rawLLMConfig struct {
	Provider  string            `yaml:"provider"`
	Timeout   string            `yaml:"timeout"`
	StubDelay string            `yaml:"stub_delay"`
	Grok      rawProviderConfig `yaml:"grok"`
	Gemini    rawProviderConfig `yaml:"gemini"`
	Claude    rawProviderConfig `yaml:"claude"`
}

type rawProviderConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// Load reads the YAML file at configPath, applies environment overrides and
// validates the result. A missing file at the default path is not an error so
// the service can run from environment variables alone.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := Default()
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		if err := applyRawAppConfig(&cfg, raw); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &cfg, nil
}

// Default returns the configuration used before any file or environment
// override is applied.
func Default() AppConfig {
	return AppConfig{
		Port:      defaultPort,
		Env:       defaultEnv,
		APIPrefix: defaultAPIPrefix,
		LogLevel:  defaultLogLevel,
		Storage: StorageConfig{
			Driver:   defaultStorageDriver,
			MongoURL: defaultMongoURL,
			Database: defaultDatabaseName,
		},
		RateLimit:                RateLimitConfig{RequestsPerMinute: defaultRequestsPerMin},
		SecretKey:                defaultSecretKey,
		AccessTokenExpireMinutes: defaultTokenExpireMins,
		LLM: LLMConfig{
			Timeout:   defaultLLMTimeout,
			StubDelay: defaultStubDelay,
		},
	}
}

// Validate checks value ranges after normalisation.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Storage.MongoURL == "" {
			return errors.New("storage.mongo_url is required for the mongo driver")
		}
	case DriverMySQL, DriverSQLite:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the %s driver", c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("invalid rate_limit.requests_per_minute %d, expected >= 0", c.RateLimit.RequestsPerMinute)
	}
	if c.AccessTokenExpireMinutes < 1 {
		return fmt.Errorf("invalid access_token_expire_minutes %d, expected >= 1", c.AccessTokenExpireMinutes)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("invalid llm.timeout %s", c.LLM.Timeout)
	}
	if c.LLM.StubDelay < 0 {
		return fmt.Errorf("invalid llm.stub_delay %s", c.LLM.StubDelay)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return c.Env == "development"
}

// AccessTokenTTL is the lifetime of tokens issued by POST /auth/token.
func (c *AppConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}
