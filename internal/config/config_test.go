package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  port: 9090
  read_timeout: 10s
  write_timeout: 60s

model_list:
  - model_name: group-model-a
    llm_params:
      api_type: gemini
      model: gemini-2.0-flash
      api_base: https://example.com/v1beta
      api_key: ${TEST_API_KEY}
      rewrite_body:
        temperature: 0.2

router_settings:
  strategy: round-robin
  model_groups:
    - name: group-a
      models:
        - name: group-model-a
          weight: 1
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("TEST_API_KEY", "my-secret-key")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)

	require.Len(t, cfg.ModelList, 1)
	m := cfg.ModelList[0]
	assert.Equal(t, "group-model-a", m.ModelName)
	assert.Equal(t, "gemini", m.LLMParams.APIType)
	assert.Equal(t, "my-secret-key", m.LLMParams.APIKey)
	assert.Equal(t, "https://example.com/v1beta", m.LLMParams.APIBase)
	assert.Equal(t, 0.2, m.LLMParams.RewriteBody["temperature"])

	assert.Equal(t, "round-robin", cfg.RouterSettings.Strategy)
	require.Len(t, cfg.RouterSettings.ModelGroups, 1)
	assert.Equal(t, "group-a", cfg.RouterSettings.ModelGroups[0].Name)
	assert.Equal(t, uint(1), cfg.RouterSettings.ModelGroups[0].Models[0].Weight)
}

func TestLoadEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  port: 8080
  read_timeout: 30s
  write_timeout: 120s
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("LLMGATEWAY_SERVER_PORT", "3000")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadRejectsUnknownAPIType(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
model_list:
  - model_name: bad
    llm_params:
      api_type: cohere
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateModelName(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
model_list:
  - model_name: dup
    llm_params:
      api_type: openai
  - model_name: dup
    llm_params:
      api_type: anthropic
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestStoreReplace(t *testing.T) {
	cfgA := &Config{Server: ServerConfig{Port: 1}}
	cfgB := &Config{Server: ServerConfig{Port: 2}}

	s := NewStore(cfgA)
	assert.Equal(t, 1, s.Load().Server.Port)

	s.Replace(cfgB)
	assert.Equal(t, 2, s.Load().Server.Port)
}
