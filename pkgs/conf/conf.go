package conf

import (
	"context"
	"fmt"
	"moviebot/whatsapp-bot/pkgs/utils"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Version       int
	BaseConfig    BaseConfig
	GeminiConfig  GeminiConfig
	SessionConfig SessionConfig
	RedisConfig   RedisConfig
}

type BaseConfig struct {
	Environment string `env:"ENVIRONMENT, default=development"`
	Port        int    `env:"PORT, default=5000" validate:"required,min=1,max=65535"`
}

type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY, required" validate:"required"`
	Model   string        `env:"GEMINI_MODEL, default=gemini-1.5-flash" validate:"required"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT, default=30s"`
}

type SessionConfig struct {
	Store           string        `env:"SESSION_STORE, default=memory" validate:"required,oneof=memory redis"`
	MaxMessages     int           `env:"SESSION_MAX_MESSAGES, default=40" validate:"min=2"`
	MaxTokens       int           `env:"SESSION_MAX_TOKENS, default=16000" validate:"min=1"`
	IdleTTL         time.Duration `env:"SESSION_IDLE_TTL, default=24h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL, default=1m"`
	LockTimeout     time.Duration `env:"SESSION_LOCK_TIMEOUT, default=30s"`
}

type RedisConfig struct {
	URL string `env:"REDIS_URL" validate:"omitempty,url"`
}

// Validate runs the cross-section checks that struct tags cannot express.
func (c *Config) Validate() error {
	if c.SessionConfig.Store == "redis" && c.RedisConfig.URL == "" {
		return fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
	}
	return nil
}

// Redacted returns a copy that is safe to print.
func (c Config) Redacted() Config {
	if c.GeminiConfig.APIKey != "" {
		c.GeminiConfig.APIKey = "****"
	}
	if c.RedisConfig.URL != "" {
		c.RedisConfig.URL = redactURL(c.RedisConfig.URL)
	}
	return c
}

func redactURL(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return raw
	}
	return raw[:scheme+3] + "****" + raw[at:]
}

var globalCfg *Config = &Config{}

// ConfigProvider defines the interface for configuration providers
type ConfigProvider interface {
	// Name returns the provider name for logging/debugging
	Name() string
	// Lookup returns the value for the given key, and whether it was found
	Lookup(ctx context.Context, key string) (string, bool)
}

// EnvProvider loads configuration from environment variables
type EnvProvider struct{}

func (e *EnvProvider) Name() string {
	return "environment"
}

func (e *EnvProvider) Lookup(ctx context.Context, key string) (string, bool) {
	value := os.Getenv(key)
	return value, value != ""
}

// DotEnvProvider loads configuration from .env files
type DotEnvProvider struct {
	envMap map[string]string
}

func NewDotEnvProvider(filePath string) *DotEnvProvider {
	envMap, err := godotenv.Read(filePath)
	if err != nil {
		envMap = map[string]string{} // .env file is optional
	}
	return &DotEnvProvider{envMap: envMap}
}

func (d *DotEnvProvider) Name() string {
	return "dotenv"
}

func (d *DotEnvProvider) Lookup(ctx context.Context, key string) (string, bool) {
	value, found := d.envMap[key]
	return value, found
}

// MapProvider serves values from an in-memory map. Used by tests and the CLI.
type MapProvider map[string]string

func (m MapProvider) Name() string {
	return "map"
}

func (m MapProvider) Lookup(ctx context.Context, key string) (string, bool) {
	value, found := m[key]
	return value, found
}

// MultiProvider combines multiple providers with priority order
// Earlier providers in the slice have higher priority
type MultiProvider struct {
	providers []ConfigProvider
}

func NewMultiProvider(providers ...ConfigProvider) *MultiProvider {
	return &MultiProvider{providers: providers}
}

func (m *MultiProvider) Name() string {
	names := make([]string, len(m.providers))
	for i, p := range m.providers {
		names[i] = p.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (m *MultiProvider) Lookup(ctx context.Context, key string) (string, bool) {
	for _, provider := range m.providers {
		if value, found := provider.Lookup(ctx, key); found {
			return value, true
		}
	}
	return "", false
}

// providerLookuper adapts our ConfigProvider interface to envconfig.Lookuper
type providerLookuper struct {
	provider ConfigProvider
}

func (p *providerLookuper) Lookup(key string) (string, bool) {
	return p.provider.Lookup(context.Background(), key)
}

// ConfigLoader handles the configuration loading process
type ConfigLoader struct {
	providers []ConfigProvider
}

func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

func (cl *ConfigLoader) AddProvider(provider ConfigProvider) *ConfigLoader {
	cl.providers = append(cl.providers, provider)
	return cl
}

func (cl *ConfigLoader) Load(cfg *Config) error {
	ctx := context.Background()

	multiProvider := NewMultiProvider(cl.providers...)
	lookuper := &providerLookuper{provider: multiProvider}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return err
	}

	if err := utils.Validate.Struct(cfg); err != nil {
		return err
	}

	return cfg.Validate()
}

func GetConfig() *Config {
	if globalCfg.Version == 0 {
		err := Load()
		if err != nil {
			panic(err)
		}
	}
	return globalCfg
}

// Load loads configuration with environment-aware providers
func Load() error {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	loader := NewConfigLoader().
		AddProvider(&EnvProvider{}) // Highest priority: environment variables

	// In development, also load from .env file
	if environment == "development" {
		loader.AddProvider(NewDotEnvProvider(".env"))
	}

	cfg := &Config{}
	if err := loader.Load(cfg); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Version = 1
	globalCfg = cfg

	return nil
}

// LoadWithProviders builds a fresh Config from the given providers without
// touching the process-wide one.
func LoadWithProviders(providers ...ConfigProvider) (*Config, error) {
	loader := NewConfigLoader()
	for _, provider := range providers {
		loader.AddProvider(provider)
	}

	cfg := &Config{}
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Version = 1
	return cfg, nil
}

// LoadEnvFromFile loads environment variables from a specified file path
// This is primarily for testing purposes
func LoadEnvFromFile(filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("env file not found: %s", filePath)
	}

	cfg, err := LoadWithProviders(&EnvProvider{}, NewDotEnvProvider(filePath))
	if err != nil {
		return err
	}
	globalCfg = cfg
	return nil
}
