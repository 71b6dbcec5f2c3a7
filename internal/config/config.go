// Package config handles loading, validating, and hot-reloading gateway configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for the gateway.
type Config struct {
	Server         ServerConfig   `koanf:"server"`
	ModelList      []ModelEntry   `koanf:"model_list"`
	RouterSettings RouterSettings `koanf:"router_settings"`
}

// ServerConfig holds HTTP server and auth settings.
type ServerConfig struct {
	IP           string        `koanf:"ip"`
	Port         int           `koanf:"port"`
	Token        string        `koanf:"token"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// ModelEntry is a named backend: a dialect tag, where to reach it, the
// physical model id to send upstream, and the per-model body/header patches
// the forwarder applies before sending.
type ModelEntry struct {
	ModelName string    `koanf:"model_name"`
	LLMParams LLMParams `koanf:"llm_params"`
}

// LLMParams holds the wire-level details for one ModelEntry.
type LLMParams struct {
	// APIType is the backend dialect: "openai", "anthropic", or "gemini".
	APIType string `koanf:"api_type"`
	// Model is the physical model id sent upstream — distinct from
	// ModelEntry.ModelName, which is only a routing key the client uses.
	Model   string `koanf:"model"`
	APIBase string `koanf:"api_base"`
	APIKey  string `koanf:"api_key"`

	// RewriteBody is shallow-merged onto the outbound request body.
	RewriteBody map[string]any `koanf:"rewrite_body"`
	// RewriteHeader is applied as header name/value pairs; non-scalar
	// values are skipped and invalid names are dropped at forward time.
	RewriteHeader map[string]any `koanf:"rewrite_header"`
}

// RouterSettings picks the load-balancing strategy and defines the groups
// clients can address.
type RouterSettings struct {
	Strategy    string             `koanf:"strategy"`
	ModelGroups []ModelGroupConfig `koanf:"model_groups"`
}

// ModelGroupConfig is a named set of weighted ModelEntry references.
type ModelGroupConfig struct {
	Name   string             `koanf:"name"`
	Models []ModelGroupMember `koanf:"models"`
}

// ModelGroupMember references a ModelEntry by its ModelName plus a base weight.
type ModelGroupMember struct {
	Name   string `koanf:"name"`
	Weight uint   `koanf:"weight"`
}

// Load reads configuration from a YAML file, layers environment variable
// overrides on top, expands ${VAR} placeholders in api_key, and validates
// the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	// Any env var starting with LLMGATEWAY_ overrides a config value, e.g.
	// LLMGATEWAY_SERVER_PORT -> server.port.
	if err := k.Load(env.Provider("LLMGATEWAY_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "LLMGATEWAY_")),
			"_", ".",
		)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandAPIKeys(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandAPIKeys resolves ${VAR_NAME} placeholders in every model's api_key
// against the process environment.
func expandAPIKeys(cfg *Config) {
	for i, m := range cfg.ModelList {
		key := m.LLMParams.APIKey
		if strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}") {
			envVar := key[2 : len(key)-1]
			cfg.ModelList[i].LLMParams.APIKey = os.Getenv(envVar)
		}
	}
}

// Validate checks structural invariants that koanf's unmarshal doesn't
// enforce: every model has a known dialect, and strategy is one we support.
// It deliberately does NOT reject a group referencing a missing ModelEntry —
// per the data-model invariant, that group is simply unselectable, which is
// a router-time condition, not a load-time error.
func Validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.ModelList))
	for _, m := range cfg.ModelList {
		if m.ModelName == "" {
			return fmt.Errorf("model_list entry missing model_name")
		}
		if seen[m.ModelName] {
			return fmt.Errorf("duplicate model_name %q in model_list", m.ModelName)
		}
		seen[m.ModelName] = true

		switch m.LLMParams.APIType {
		case "openai", "anthropic", "gemini":
		default:
			return fmt.Errorf("model %q: unknown api_type %q", m.ModelName, m.LLMParams.APIType)
		}
	}

	switch cfg.RouterSettings.Strategy {
	case "", "round-robin", "least-conn", "random":
	default:
		return fmt.Errorf("unknown router strategy %q", cfg.RouterSettings.Strategy)
	}

	return nil
}
