package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/at-ishikawa/parentstudy/internal/validation"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// dotEnvFiles are loaded in order when present. Variables already set in the process win.
var dotEnvFiles = []string{".env.local", ".env"}

type Config struct {
	Provider  string          `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	Gemini    ProviderConfig  `mapstructure:"gemini"`
	OpenAI    ProviderConfig  `mapstructure:"openai"`
	Inference InferenceConfig `mapstructure:"inference"`
	Worksheet WorksheetConfig `mapstructure:"worksheet"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Server    ServerConfig    `mapstructure:"server"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model" validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

type InferenceConfig struct {
	MaxRetryAttempts uint          `mapstructure:"max_retry_attempts" validate:"gte=1,lte=10"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type WorksheetConfig struct {
	QuestionCount int `mapstructure:"question_count" validate:"gte=1,lte=20"`
}

type TemplatesConfig struct {
	// WorksheetMarkdown is optional - if not specified, the embedded template is used
	WorksheetMarkdown string `mapstructure:"worksheet_markdown" validate:"omitempty,file"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address" validate:"required"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxWorksheets  int      `mapstructure:"max_worksheets" validate:"gte=1"`
}

// ProviderSettings returns the settings of the selected provider.
func (cfg *Config) ProviderSettings() ProviderConfig {
	if cfg.Provider == ProviderOpenAI {
		return cfg.OpenAI
	}
	return cfg.Gemini
}

type ConfigLoader struct {
	viper     *viper.Viper
	validator *validation.Validator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, err := validation.New("mapstructure")
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}
	validate.RegisterStructValidation(validateProviderKey, Config{})

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/parentstudy")
	}

	return &ConfigLoader{
		viper:     v,
		validator: validate,
	}, nil
}

// Load is a shorthand of NewConfigLoader(configFile).Load().
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

func (loader *ConfigLoader) Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := loader.viper

	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("inference.max_retry_attempts", 3)
	v.SetDefault("inference.retry_delay", 500*time.Millisecond)
	v.SetDefault("inference.timeout", 2*time.Minute)
	v.SetDefault("worksheet.question_count", 5)
	// Template is optional - if not specified, will use embedded fallback template
	v.SetDefault("templates.worksheet_markdown", "")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_worksheets", 100)

	envBindings := map[string][]string{
		"provider": {"PARENTSTUDY_PROVIDER"},
		// API keys are bound to environment variables only (not from config file)
		"gemini.api_key": {"GEMINI_API_KEY", "API_KEY"},
		"gemini.model":   {"GEMINI_MODEL"},
		"openai.api_key": {"OPENAI_API_KEY"},
		"openai.model":   {"OPENAI_MODEL"},
		"server.address": {"PARENTSTUDY_SERVER_ADDRESS"},
	}
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %v environment variables: %w", envs, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func validateProviderKey(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			sl.ReportError(cfg.Gemini.APIKey, "gemini.api_key", "Gemini.APIKey", "required", "")
		}
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			sl.ReportError(cfg.OpenAI.APIKey, "openai.api_key", "OpenAI.APIKey", "required", "")
		}
	}
}

func loadDotEnv() error {
	for _, path := range dotEnvFiles {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("os.Stat(%s) > %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("godotenv.Load(%s) > %w", path, err)
		}
	}
	return nil
}
