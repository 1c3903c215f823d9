// Package config loads the Neural AI backend settings.
//
// Values are layered: built-in defaults, then an optional TOML file, then a
// .env file in the working directory, then the process environment. Flags
// applied by the CLI override all of them.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/papercomputeco/neural/pkg/provider"
	"github.com/papercomputeco/neural/proxy"
)

// DefaultSystemDirective is the persona injected ahead of every conversation.
const DefaultSystemDirective = "You are Neural AI — brilliant, friendly, ultra-modern. Be concise but helpful. " +
	"Use emojis sparingly. If asked about images, say: 'Switch to the Image Generator tab to create visuals!'"

// ErrMissingAPIKey is returned by Validate when no provider credential is set.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is required")

type Config struct {
	Port        string `env:"PORT" toml:"port"`
	FrontendURL string `env:"FRONTEND_URL" toml:"frontend_url"` // Only origin allowed by CORS

	OpenAIAPIKey  string `env:"OPENAI_API_KEY" toml:"openai_api_key"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" toml:"openai_base_url"` // Empty uses the SDK default

	ChatModel       string `env:"CHAT_MODEL" toml:"chat_model"`
	ImageModel      string `env:"IMAGE_MODEL" toml:"image_model"`
	SystemDirective string `env:"SYSTEM_DIRECTIVE" toml:"system_directive"`

	// RecordDB enables transcript recording: ":memory:" or a SQLite file path.
	RecordDB string `env:"RECORD_DB" toml:"record_db"`

	Debug     bool   `env:"DEBUG" toml:"debug"`
	LogFormat string `env:"LOG_FORMAT" toml:"log_format"` // console|json
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Port:            "3001",
		FrontendURL:     "http://localhost:3000",
		ChatModel:       provider.DefaultChatModel,
		ImageModel:      provider.DefaultImageModel,
		SystemDirective: DefaultSystemDirective,
		LogFormat:       "console",
	}
}

// Load builds the configuration. file may be empty.
func Load(file string) (*Config, error) {
	cfg := Defaults()

	if file != "" {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", file, err)
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("could not parse environment: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.FrontendURL) == "" {
		return errors.New("FRONTEND_URL must not be empty")
	}
	if err := proxy.ValidateOrigin(strings.TrimRight(c.FrontendURL, "/")); err != nil {
		return fmt.Errorf("invalid FRONTEND_URL: %w", err)
	}
	return nil
}

// ListenAddr is the address the HTTP server binds.
func (c *Config) ListenAddr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Provider returns the provider settings.
func (c *Config) Provider() provider.Config {
	return provider.Config{
		APIKey:     c.OpenAIAPIKey,
		BaseURL:    c.OpenAIBaseURL,
		ChatModel:  c.ChatModel,
		ImageModel: c.ImageModel,
	}
}
