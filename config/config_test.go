package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/nearme-nli/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderGoogleAI, cfg.LLM.Provider)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.LLM.Model)
	assert.Equal(t, 0.0, cfg.LLM.Temperature)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "test.json", cfg.Harness.Fixtures)
	assert.Equal(t, TranslatorLLM, cfg.Harness.Translator)
	assert.Equal(t, "nearme-en-v1", cfg.Harness.Table)
	assert.True(t, cfg.Harness.Validate)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Address())

	mode, err := cfg.OutputMode()
	require.NoError(t, err)
	assert.Equal(t, models.ModeEnvelope, mode)
}

func TestLoadFile(t *testing.T) {
	p := writeConfig(t, `
llm:
  provider: ollama
  model: llama3
  timeout: 5s
harness:
  translator: rules
  outputMode: bare
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, TranslatorRules, cfg.Harness.Translator)
	assert.Equal(t, "test.json", cfg.Harness.Fixtures)

	mode, err := cfg.OutputMode()
	require.NoError(t, err)
	assert.Equal(t, models.ModeBare, mode)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(APIKeyEnv, "secret")
	t.Setenv("LLM_MODEL", "gemini-pro")
	t.Setenv("HARNESS_FIXTURES", "other.json")

	cfg, err := Load(writeConfig(t, "llm:\n  provider: googleai\n"))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-pro", cfg.LLM.Model)
	assert.Equal(t, "other.json", cfg.Harness.Fixtures)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LLM:     LLM{Provider: ProviderGoogleAI, Model: "m", Timeout: time.Second},
			Harness: Harness{Fixtures: "test.json", Translator: TranslatorLLM, OutputMode: "envelope"},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown translator", func(c *Config) { c.Harness.Translator = "magic" }},
		{"unknown output mode", func(c *Config) { c.Harness.OutputMode = "xml" }},
		{"no fixtures", func(c *Config) { c.Harness.Fixtures = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidateIgnoresLLMSettings(t *testing.T) {
	cfg := Config{
		LLM:     LLM{Provider: "openai", Timeout: -time.Second, Temperature: 3},
		Harness: Harness{Fixtures: "test.json", Translator: TranslatorRules, OutputMode: "bare"},
	}

	assert.NoError(t, cfg.Validate())
}

func TestLLMValidate(t *testing.T) {
	valid := func() LLM {
		return LLM{Provider: ProviderGoogleAI, Model: "m", Timeout: time.Second, Temperature: 0.5}
	}

	l := valid()
	require.NoError(t, l.Validate())

	tests := []struct {
		name   string
		mutate func(*LLM)
	}{
		{"empty model", func(l *LLM) { l.Model = " " }},
		{"zero timeout", func(l *LLM) { l.Timeout = 0 }},
		{"negative timeout", func(l *LLM) { l.Timeout = -time.Second }},
		{"temperature below range", func(l *LLM) { l.Temperature = -0.1 }},
		{"temperature above range", func(l *LLM) { l.Temperature = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid()
			tt.mutate(&l)
			assert.ErrorIs(t, l.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadWithNegativeTimeout(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "-1s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, -time.Second, cfg.LLM.Timeout)
	assert.ErrorIs(t, cfg.LLM.Validate(), ErrInvalidConfig)
}

func TestLoadEnvFile(t *testing.T) {
	const key = "NEARME_NLI_ENV_FILE_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	tests := []struct {
		name    string
		content *string
		wantErr bool
		want    string
	}{
		{name: "missing file"},
		{name: "valid file", content: strPtr(key + "=from-file\n"), want: "from-file"},
		{name: "broken file", content: strPtr("!!!broken\n"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), ".env")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(p, []byte(*tt.content), 0o600))
			}

			err := loadEnvFile(p)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to load")
				return
			}
			require.NoError(t, err)
			if tt.want != "" {
				assert.Equal(t, tt.want, os.Getenv(key))
			}
		})
	}
}

func strPtr(s string) *string {
	return &s
}
