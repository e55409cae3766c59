package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imkonsowa/nearme-nli/models"
)

var ErrInvalidConfig = errors.New("INVALID_CONFIG")

const (
	ProviderGoogleAI = "googleai"
	ProviderOllama   = "ollama"

	TranslatorLLM   = "llm"
	TranslatorRules = "rules"
)

type LLM struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"apiKey"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type Ollama struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

func (o *Ollama) Address() string {
	return fmt.Sprintf("http://%s:%s", o.Host, o.Port)
}

type Harness struct {
	Fixtures   string `mapstructure:"fixtures"`
	Translator string `mapstructure:"translator"`
	OutputMode string `mapstructure:"outputMode"`
	Table      string `mapstructure:"table"`
	TablePath  string `mapstructure:"tablePath"`
	Validate   bool   `mapstructure:"validate"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	LLM     LLM     `mapstructure:"llm"`
	Ollama  Ollama  `mapstructure:"ollama"`
	Harness Harness `mapstructure:"harness"`
	Log     Log     `mapstructure:"log"`
}

func (c *Config) OutputMode() (models.OutputMode, error) {
	return models.ParseOutputMode(c.Harness.OutputMode)
}

// Validate checks the generation settings. Only the LLM translator needs
// them, so it runs when that translator is set up.
func (l LLM) Validate() error {
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("%w: llm.model is required", ErrInvalidConfig)
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("%w: llm.timeout must be positive", ErrInvalidConfig)
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("%w: llm.temperature must be within [0, 2]", ErrInvalidConfig)
	}

	return nil
}

func (c *Config) Validate() error {
	switch c.Harness.Translator {
	case TranslatorLLM, TranslatorRules:
	default:
		return fmt.Errorf("%w: harness.translator must be %q or %q, got %q", ErrInvalidConfig, TranslatorLLM, TranslatorRules, c.Harness.Translator)
	}
	if _, err := c.OutputMode(); err != nil {
		return fmt.Errorf("%w: harness.outputMode: %v", ErrInvalidConfig, err)
	}
	if strings.TrimSpace(c.Harness.Fixtures) == "" {
		return fmt.Errorf("%w: harness.fixtures is required", ErrInvalidConfig)
	}

	return nil
}
