package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/nearme-nli/config"
	"github.com/imkonsowa/nearme-nli/harness"
	"github.com/imkonsowa/nearme-nli/translator"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func TestTranslateWithRules(t *testing.T) {
	out, err := execute(t, "translate", "--translator", "rules", "--mode", "bare", "Restaurant", "or", "cafe?")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"include":{"or":{"lt":[693,695]},"and":{}},"exclude":{"or":{},"and":{}}}`+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--mode", "envelope", "UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, "valid (UNKNOWN)\n", out)

	out, err = execute(t, "validate", "--mode", "envelope", `{"version":1}`)
	assert.ErrorIs(t, err, errInvalidOutput)
	assert.Contains(t, out, "invalid:")
}

func TestRunWithRules(t *testing.T) {
	out, err := execute(t, "run", "--translator", "rules", "--mode", "envelope", "--fixtures", "../../test.json")
	require.NoError(t, err)

	assert.Contains(t, out, "Running manual NLI tests using model: rules/nearme-en-v1")
	assert.Contains(t, out, "--- Skipping test case 11/11 ---")
	assert.NotContains(t, out, "Schema:     invalid")
	assert.Contains(t, out, "--- Manual Test Run Complete ---")
}

func TestRunMissingFixtures(t *testing.T) {
	_, err := execute(t, "run", "--translator", "rules", "--fixtures", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, harness.ErrFixturesNotFound)
}

func TestRunWithoutCredentialCannotRun(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")

	out, err := execute(t, "run", "--translator", "llm", "--fixtures", "../../test.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Cannot run tests because the translator could not be configured.")
	assert.Contains(t, out, translator.ErrMissingCredential.Error())
	assert.NotContains(t, out, "--- Test 1/")
}

func TestRunWithBadLLMSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantOut []string
	}{
		{
			name:    "unknown provider",
			env:     map[string]string{"LLM_PROVIDER": "gemini"},
			args:    []string{"run", "--translator", "llm", "--fixtures", "../../test.json"},
			wantOut: []string{"Cannot run tests because the translator could not be configured.", translator.ErrUnknownProvider.Error()},
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"LLM_TIMEOUT": "-1s", config.APIKeyEnv: "key"},
			args:    []string{"run", "--translator", "llm", "--fixtures", "../../test.json"},
			wantOut: []string{"Cannot run tests because the translator could not be configured.", config.ErrInvalidConfig.Error()},
		},
		{
			name:    "ignored by the rule translator",
			env:     map[string]string{"LLM_PROVIDER": "gemini", "LLM_TIMEOUT": "-1s"},
			args:    []string{"run", "--translator", "rules", "--fixtures", "../../test.json"},
			wantOut: []string{"--- Test 1/11 ---", "--- Manual Test Run Complete ---"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "UNKNOWN", describe(translator.Completed{Text: "UNKNOWN"}))
	assert.Equal(t, "PROMPT BLOCKED: SAFETY", describe(translator.Blocked{Reason: "SAFETY"}))
	assert.Equal(t, "NO CANDIDATES", describe(translator.Empty{}))
}
