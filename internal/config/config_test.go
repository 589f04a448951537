package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billex/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.DefaultModel)
	assert.Equal(t, 0, cfg.LLM.MaxRetries)
	assert.Equal(t, 60, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, int64(20), cfg.Fetch.MaxFileSizeMB)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BILLEX_SERVER_PORT", ":9090")
	t.Setenv("BILLEX_LLM_PROVIDER", "gemini")
	t.Setenv("BILLEX_LLM_MAX_RETRIES", "3")
	t.Setenv("BILLEX_OCR_LANGUAGES", "eng, hin")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, []string{"eng", "hin"}, cfg.OCR.Languages)
}

func TestLoad_PortEnvFallback(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestPrimaryConfig_FallsBackToFlatFields(t *testing.T) {
	llm := config.LLMConfig{
		Provider:     "openai",
		APIKey:       "flat-key",
		DefaultModel: "gpt-4o-mini",
		TimeoutSecs:  90,
	}

	primary := llm.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "flat-key", primary.APIKey)
	assert.Equal(t, 90, primary.TimeoutSecs)
}

func TestPrimaryConfig_PrefersNestedProvider(t *testing.T) {
	llm := config.LLMConfig{
		Provider: "openai",
		Primary: config.LLMProviderConfig{
			Provider: "gemini",
			APIKey:   "nested-key",
		},
	}

	primary := llm.PrimaryConfig()

	assert.Equal(t, "gemini", primary.Provider)
	assert.Equal(t, "nested-key", primary.APIKey)
}

func TestSecondaryConfig_NilWhenUnset(t *testing.T) {
	llm := config.LLMConfig{
		Provider: "openai",
		APIKey:   "flat-key",
	}

	assert.Nil(t, llm.SecondaryConfig())
}

func TestSecondaryConfig_ReturnsNestedProvider(t *testing.T) {
	llm := config.LLMConfig{
		Provider: "openai",
		Secondary: config.LLMProviderConfig{
			Provider:     "gemini",
			APIKey:       "secondary-key",
			DefaultModel: "gemini-2.0-flash",
		},
	}

	secondary := llm.SecondaryConfig()

	require.NotNil(t, secondary)
	assert.Equal(t, "gemini", secondary.Provider)
	assert.Equal(t, "secondary-key", secondary.APIKey)
	assert.Equal(t, "gemini-2.0-flash", secondary.DefaultModel)
}

func TestLoad_SecondaryFromEnv(t *testing.T) {
	t.Setenv("BILLEX_LLM_SECONDARY_PROVIDER", "gemini")
	t.Setenv("BILLEX_LLM_SECONDARY_API_KEY", "secondary-key")

	cfg, err := config.Load()

	require.NoError(t, err)
	secondary := cfg.LLM.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "gemini", secondary.Provider)
	assert.Equal(t, "secondary-key", secondary.APIKey)
}
