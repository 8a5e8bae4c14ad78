// Package config loads CLI configuration from a file, ATS_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonathan/resume-ats/internal/llm"
	"github.com/jonathan/resume-ats/internal/pipeline"
)

// EnvPrefix namespaces every environment variable read by the loader
const EnvPrefix = "ATS"

// DefaultOracleTimeout bounds a single oracle call unless configured otherwise
const DefaultOracleTimeout = 2 * time.Minute

// Config is the fully resolved CLI configuration
type Config struct {
	Provider      string                 `mapstructure:"provider" json:"provider" validate:"oneof=gemini vertex anthropic"`
	APIKey        string                 `mapstructure:"api_key" json:"-"`
	Vertex        VertexConfig           `mapstructure:"vertex" json:"vertex"`
	Models        map[string]string      `mapstructure:"models" json:"models,omitempty" validate:"dive,keys,oneof=lite standard advanced,endkeys,required"`
	Stages        map[string]StageConfig `mapstructure:"stages" json:"stages,omitempty" validate:"dive"`
	OracleTimeout time.Duration          `mapstructure:"oracle_timeout" json:"oracle_timeout" validate:"gte=0"`

	ConcurrentEnhancement bool `mapstructure:"concurrent_enhancement" json:"concurrent_enhancement"`

	DatabaseURL string        `mapstructure:"database_url" json:"-"`
	Archive     ArchiveConfig `mapstructure:"archive" json:"archive"`
	Events      EventsConfig  `mapstructure:"events" json:"events"`
	Log         LogConfig     `mapstructure:"log" json:"log"`

	OutputDir string `mapstructure:"output_dir" json:"output_dir"`
	Template  string `mapstructure:"template" json:"template,omitempty"`
}

// VertexConfig selects the Google Cloud project serving Vertex AI requests
type VertexConfig struct {
	Project  string `mapstructure:"project" json:"project,omitempty"`
	Location string `mapstructure:"location" json:"location,omitempty"`
}

// StageConfig overrides the generation options of a single stage
type StageConfig struct {
	Tier        string   `mapstructure:"tier" json:"tier,omitempty" validate:"omitempty,oneof=lite standard advanced"`
	Temperature *float32 `mapstructure:"temperature" json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// ArchiveConfig points at an S3-compatible bucket for original uploads. Empty Bucket disables archiving.
type ArchiveConfig struct {
	Bucket    string `mapstructure:"bucket" json:"bucket,omitempty"`
	Prefix    string `mapstructure:"prefix" json:"prefix,omitempty"`
	Endpoint  string `mapstructure:"endpoint" json:"endpoint,omitempty" validate:"omitempty,url"`
	Region    string `mapstructure:"region" json:"region,omitempty"`
	AccessKey string `mapstructure:"access_key" json:"-"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
}

// Enabled reports whether uploads should be archived
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// EventsConfig points at an AMQP broker for stage events. Empty URL disables publishing.
type EventsConfig struct {
	URL      string `mapstructure:"url" json:"-" validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange" json:"exchange,omitempty"`
}

// Enabled reports whether stage events should be published
func (e EventsConfig) Enabled() bool {
	return e.URL != ""
}

// LogConfig controls the zap logger
type LogConfig struct {
	JSON  bool `mapstructure:"json" json:"json"`
	Debug bool `mapstructure:"debug" json:"debug"`
}

// ConfigError reports an invalid configuration
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ErrMissingAPIKey is returned when a provider needs a key and none was configured
var ErrMissingAPIKey = errors.New("missing API key")

// providerKeyEnv lists the conventional key variables consulted when api_key is unset
var providerKeyEnv = map[string]string{
	string(llm.ProviderGemini):    "GEMINI_API_KEY",
	string(llm.ProviderAnthropic): "ANTHROPIC_API_KEY",
}

// NewViper returns a viper instance with defaults and environment bindings in place.
// Callers bind their flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider", string(llm.ProviderGemini))
	v.SetDefault("api_key", "")
	v.SetDefault("vertex.project", "")
	v.SetDefault("vertex.location", "us-central1")
	v.SetDefault("oracle_timeout", DefaultOracleTimeout)
	v.SetDefault("concurrent_enhancement", false)
	v.SetDefault("database_url", "")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "uploads/")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")
	v.SetDefault("events.url", "")
	v.SetDefault("events.exchange", "resume_ats.events")
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("output_dir", ".")
	v.SetDefault("template", "")

	// Unprefixed names used by the rest of the ecosystem.
	_ = v.BindEnv("database_url", "ATS_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("vertex.project", "ATS_VERTEX_PROJECT", "GOOGLE_CLOUD_PROJECT")
	return v
}

// LoadDotEnv loads variables from the given .env files (default ".env") without overriding the environment.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &ConfigError{Message: fmt.Sprintf("failed to load %s", p), Cause: err}
		}
	}
	return nil
}

// Load reads the optional config file into v, decodes and validates the result
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Message: "failed to decode configuration", Cause: err}
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.APIKey == "" {
		if env, ok := providerKeyEnv[cfg.Provider]; ok {
			cfg.APIKey = os.Getenv(env)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values and cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &ConfigError{Message: "invalid configuration", Cause: err}
	}
	if c.Provider == string(llm.ProviderVertex) && (c.Vertex.Project == "" || c.Vertex.Location == "") {
		return &ConfigError{Message: "provider vertex requires vertex.project and vertex.location"}
	}
	if c.Archive.Enabled() && c.Archive.Endpoint == "" && c.Archive.Region == "" {
		return &ConfigError{Message: "archive.bucket requires archive.endpoint or archive.region"}
	}
	if (c.Archive.AccessKey == "") != (c.Archive.SecretKey == "") {
		return &ConfigError{Message: "archive.access_key and archive.secret_key must be set together"}
	}
	return nil
}

// RequireOracle checks that the configured provider can be reached
func (c *Config) RequireOracle() error {
	if c.Provider == string(llm.ProviderVertex) {
		return nil
	}
	if c.APIKey == "" {
		hint := "api_key"
		if env, ok := providerKeyEnv[c.Provider]; ok {
			hint = fmt.Sprintf("%s_API_KEY or %s", EnvPrefix, env)
		}
		return &ConfigError{Message: fmt.Sprintf("provider %s: set %s", c.Provider, hint), Cause: ErrMissingAPIKey}
	}
	return nil
}

// LLMConfig returns the provider defaults with configured model overrides applied
func (c *Config) LLMConfig() *llm.Config {
	provider := llm.Provider(c.Provider)
	var out *llm.Config
	if provider == llm.ProviderVertex {
		out = llm.DefaultVertexConfig(c.Vertex.Project, c.Vertex.Location)
	} else {
		out = llm.DefaultConfigFor(provider)
	}
	for tier, model := range c.Models {
		out = out.WithModel(llm.ModelTier(tier), model)
	}
	return out
}

// Tuning converts per-stage overrides into pipeline form
func (c *Config) Tuning() pipeline.Tuning {
	if len(c.Stages) == 0 {
		return nil
	}
	t := make(pipeline.Tuning, len(c.Stages))
	for stage, sc := range c.Stages {
		t[stage] = pipeline.Override{Tier: llm.ModelTier(sc.Tier), Temperature: sc.Temperature}
	}
	return t
}

// PipelineOptions returns the options shared by every pipeline run
func (c *Config) PipelineOptions(observer pipeline.Observer) pipeline.Options {
	return pipeline.Options{
		RunOptions: pipeline.RunOptions{
			Observer:      observer,
			OracleTimeout: c.OracleTimeout,
		},
		Tuning: c.Tuning(),
	}
}
