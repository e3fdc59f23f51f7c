package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if raw.Debug != nil && *raw.Debug {
		cfg.Env = defaultEnv
	}
	if v := strings.TrimSpace(raw.APIPrefix); v != "" {
		cfg.APIPrefix = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.Log.Dir); v != "" {
		cfg.LogDir = v
	}

	if v := strings.TrimSpace(raw.MongoDBURL); v != "" {
		cfg.Storage.MongoURL = v
	}
	if v := strings.TrimSpace(raw.DBName); v != "" {
		cfg.Storage.Database = v
	}
	if v := strings.TrimSpace(raw.Storage.Driver); v != "" {
		cfg.Storage.Driver = v
	}
	if v := strings.TrimSpace(raw.Storage.MongoURL); v != "" {
		cfg.Storage.MongoURL = v
	}
	if v := strings.TrimSpace(raw.Storage.Database); v != "" {
		cfg.Storage.Database = v
	}
	if v := strings.TrimSpace(raw.Storage.DSN); v != "" {
		cfg.Storage.DSN = v
	}

	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	if raw.RateLimit.RequestsPerMinute != 0 {
		cfg.RateLimit.RequestsPerMinute = raw.RateLimit.RequestsPerMinute
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = raw.AllowedOrigins
	}
	if raw.TrustedProxies != nil {
		cfg.TrustedProxies = raw.TrustedProxies
	}
	if v := strings.TrimSpace(raw.SecretKey); v != "" {
		cfg.SecretKey = v
	}
	if raw.AccessTokenExpireMinutes != 0 {
		cfg.AccessTokenExpireMinutes = raw.AccessTokenExpireMinutes
	}

	if v := strings.TrimSpace(raw.LLM.Provider); v != "" {
		cfg.LLM.Provider = v
	}
	if v := strings.TrimSpace(raw.LLM.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("llm.timeout: %w", err)
		}
		cfg.LLM.Timeout = d
	}
	if v := strings.TrimSpace(raw.LLM.StubDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("llm.stub_delay: %w", err)
		}
		cfg.LLM.StubDelay = d
	}
	cfg.LLM.Grok = applyRawProvider(cfg.LLM.Grok, raw.LLM.Grok)
	cfg.LLM.Gemini = applyRawProvider(cfg.LLM.Gemini, raw.LLM.Gemini)
	cfg.LLM.Claude = applyRawProvider(cfg.LLM.Claude, raw.LLM.Claude)
	return nil
}

func applyRawProvider(current ProviderConfig, raw rawProviderConfig) ProviderConfig {
	if v := strings.TrimSpace(raw.APIKey); v != "" {
		current.APIKey = v
	}
	if v := strings.TrimSpace(raw.Endpoint); v != "" {
		current.Endpoint = v
	}
	if v := strings.TrimSpace(raw.Model); v != "" {
		current.Model = v
	}
	return current
}

// applyEnv overlays the environment variable names the service has always
// accepted. Non-empty variables win over the file.
func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = port
	}
	if v, ok := get("DEBUG"); ok {
		if debug, err := strconv.ParseBool(v); err == nil && debug {
			cfg.Env = defaultEnv
		}
	}
	if v, ok := get("APP_ENV"); ok {
		cfg.Env = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("LOG_DIR"); ok {
		cfg.LogDir = v
	}
	if v, ok := get("STORAGE_DRIVER"); ok {
		cfg.Storage.Driver = v
	}
	if v, ok := get("MONGODB_URL"); ok {
		cfg.Storage.MongoURL = v
	}
	if v, ok := get("DB_NAME"); ok {
		cfg.Storage.Database = v
	}
	if v, ok := get("DATABASE_DSN"); ok {
		cfg.Storage.DSN = v
	}
	if v, ok := get("REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	if v, ok := get("SECRET_KEY"); ok {
		cfg.SecretKey = v
	}
	if v, ok := get("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		mins, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
		}
		cfg.AccessTokenExpireMinutes = mins
	}
	if v, ok := get("LLM_PROVIDER"); ok {
		cfg.LLM.Provider = v
	}
	if v, ok := get("GROK_API_KEY"); ok {
		cfg.LLM.Grok.APIKey = v
	}
	if v, ok := get("GEMINI_API_KEY"); ok {
		cfg.LLM.Gemini.APIKey = v
	}
	if v, ok := get("ANTHROPIC_API_KEY"); ok {
		cfg.LLM.Claude.APIKey = v
	}
	return nil
}

func normalize(cfg *AppConfig) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	cfg.APIPrefix = "/" + strings.Trim(strings.TrimSpace(cfg.APIPrefix), "/")
	if cfg.APIPrefix == "/" {
		cfg.APIPrefix = ""
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.Storage.Driver == "mongodb" {
		cfg.Storage.Driver = DriverMongo
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.AllowedOrigins = compactList(cfg.AllowedOrigins)
	cfg.TrustedProxies = compactList(cfg.TrustedProxies)
}

func compactList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
