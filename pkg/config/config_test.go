package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.AI.PrimaryProvider)
	assert.True(t, cfg.AI.FallbackEnabled)
	assert.Equal(t, 6, cfg.AI.HistoryWindow)
	assert.Equal(t, "config/drug_safety_rules.json", cfg.Safety.RulesPath)
	assert.Equal(t, "gemini-1.5-flash", cfg.AI.Gemini.Model)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AI_PRIMARY_PROVIDER", "huggingface")
	t.Setenv("AI_FALLBACK_ENABLED", "false")
	t.Setenv("AI_HISTORY_WINDOW", "10")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "huggingface", cfg.AI.PrimaryProvider)
	assert.False(t, cfg.AI.FallbackEnabled)
	assert.Equal(t, 10, cfg.AI.HistoryWindow)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("AI_HISTORY_WINDOW", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.AI.HistoryWindow)
}

func TestEmergencyKeywordList(t *testing.T) {
	safety := SafetyConfig{EmergencyKeywords: " Chest Pain , stroke ,, "}
	assert.Equal(t, []string{"chest pain", "stroke"}, safety.EmergencyKeywordList())
}

func TestEmergencyKeywordList_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	keywords := cfg.Safety.EmergencyKeywordList()
	assert.Contains(t, keywords, "chest pain")
	assert.Contains(t, keywords, "anaphylaxis")
}
