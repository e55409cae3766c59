package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// APIKeyEnv is the environment variable holding the Gemini credential.
const APIKeyEnv = "GEMINI_API_KEY"

// EnvFile is loaded into the environment before the configuration is read.
const EnvFile = ".env"

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderGoogleAI)
	v.SetDefault("llm.model", "gemini-1.5-flash-latest")
	v.SetDefault("llm.temperature", 0)
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("ollama.host", "localhost")
	v.SetDefault("ollama.port", "11434")

	v.SetDefault("harness.fixtures", "test.json")
	v.SetDefault("harness.translator", TranslatorLLM)
	v.SetDefault("harness.outputMode", "envelope")
	v.SetDefault("harness.table", "nearme-en-v1")
	v.SetDefault("harness.tablePath", "")
	v.SetDefault("harness.validate", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads the configuration from path, or from config/config.yaml or
// ./config.yaml when path is empty. A missing default file is not an error.
// Environment variables override file values, e.g. LLM_MODEL for llm.model.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.apiKey", APIKeyEnv); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", APIKeyEnv, err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadEnvFile loads path when it exists. Variables already set in the
// environment win.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	return nil
}
