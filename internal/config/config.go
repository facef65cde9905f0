// Package config loads the movers configuration. The configuration is read
// once at process start (file + environment) into an explicit struct that is
// passed by reference to all components; nothing reads ambient state later.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"movers/internal/errors"
)

// Config represents the complete movers configuration
type Config struct {
	Jira        JiraConfig        `json:"jira" yaml:"jira" mapstructure:"jira"`
	Server      ServerConfig      `json:"server" yaml:"server" mapstructure:"server"`
	Aggregation AggregationConfig `json:"aggregation" yaml:"aggregation" mapstructure:"aggregation"`
	Cache       CacheConfig       `json:"cache" yaml:"cache" mapstructure:"cache"`
	Logging     LoggingConfig     `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// JiraConfig contains the remote tracker connection settings
type JiraConfig struct {
	BaseURL        string `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl"`
	Email          string `json:"email" yaml:"email" mapstructure:"email"`
	APIToken       string `json:"apiToken" yaml:"apiToken" mapstructure:"apiToken"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds" mapstructure:"timeoutSeconds"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port string `json:"port" yaml:"port" mapstructure:"port"`
}

// AggregationConfig contains aggregation pipeline settings
type AggregationConfig struct {
	// Concurrency bounds the number of issues paginated simultaneously (1-10)
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
	// PageSize is the changelog page size requested per fetch
	PageSize int `json:"pageSize" yaml:"pageSize" mapstructure:"pageSize"`
	// MaxIssues is the default cap on issues fetched per search
	MaxIssues int `json:"maxIssues" yaml:"maxIssues" mapstructure:"maxIssues"`
	// DefaultLimit is the default number of ranked entries returned
	DefaultLimit int `json:"defaultLimit" yaml:"defaultLimit" mapstructure:"defaultLimit"`
	// DefaultTTLSeconds is the default result cache TTL
	DefaultTTLSeconds int `json:"defaultTtlSeconds" yaml:"defaultTtlSeconds" mapstructure:"defaultTtlSeconds"`
}

// CacheConfig contains result cache settings
type CacheConfig struct {
	MaxEntries int `json:"maxEntries" yaml:"maxEntries" mapstructure:"maxEntries"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" yaml:"format" mapstructure:"format"`
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Jira: JiraConfig{
			TimeoutSeconds: 30,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
		Aggregation: AggregationConfig{
			Concurrency:       5,
			PageSize:          100,
			MaxIssues:         150,
			DefaultLimit:      20,
			DefaultTTLSeconds: 60,
		},
		Cache: CacheConfig{
			MaxEntries: 1024,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from movers.yaml in configDir (optional)
// plus environment overrides. JIRA_BASE_URL, JIRA_EMAIL and JIRA_API_TOKEN
// take precedence over the file; everything else uses the MOVERS_ prefix,
// e.g. MOVERS_SERVER_PORT.
func LoadConfig(configDir string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("jira.timeoutSeconds", defaults.Jira.TimeoutSeconds)
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("aggregation.concurrency", defaults.Aggregation.Concurrency)
	v.SetDefault("aggregation.pageSize", defaults.Aggregation.PageSize)
	v.SetDefault("aggregation.maxIssues", defaults.Aggregation.MaxIssues)
	v.SetDefault("aggregation.defaultLimit", defaults.Aggregation.DefaultLimit)
	v.SetDefault("aggregation.defaultTtlSeconds", defaults.Aggregation.DefaultTTLSeconds)
	v.SetDefault("cache.maxEntries", defaults.Cache.MaxEntries)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("movers")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("MOVERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials come from the conventional unprefixed variables
	_ = v.BindEnv("jira.baseUrl", "JIRA_BASE_URL")
	_ = v.BindEnv("jira.email", "JIRA_EMAIL")
	_ = v.BindEnv("jira.apiToken", "JIRA_API_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	return &cfg, nil
}

// normalize clamps out-of-range values to their documented bounds.
func (c *Config) normalize() {
	if c.Aggregation.Concurrency < 1 {
		c.Aggregation.Concurrency = 1
	}
	if c.Aggregation.Concurrency > 10 {
		c.Aggregation.Concurrency = 10
	}
	if c.Aggregation.PageSize <= 0 {
		c.Aggregation.PageSize = 100
	}
	if c.Jira.TimeoutSeconds <= 0 {
		c.Jira.TimeoutSeconds = 30
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 1024
	}
}

// ValidateJira checks that the remote tracker connection is fully configured.
func (c *Config) ValidateJira() error {
	if c.Jira.BaseURL == "" {
		return errors.NewConfiguration("JIRA_BASE_URL is not set")
	}
	if c.Jira.Email == "" {
		return errors.NewConfiguration("JIRA_EMAIL is not set")
	}
	if c.Jira.APIToken == "" {
		return errors.NewConfiguration("JIRA_API_TOKEN is not set")
	}
	return nil
}
