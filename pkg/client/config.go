package client

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/integrail/pets-cli/pkg/llm"
	"github.com/integrail/pets-cli/pkg/pets"
	"github.com/integrail/pets-cli/pkg/render"
)

type Config struct {
	Provider      string   `json:"provider" yaml:"provider" toml:"provider"` // ollama or openai
	Url           string   `json:"url" yaml:"url" toml:"url"`
	ApiKey        string   `json:"apiKey" yaml:"apiKey" toml:"api_key"`
	Model         string   `json:"model" yaml:"model" toml:"model"`
	Prompt        string   `json:"prompt" yaml:"prompt" toml:"prompt"`
	Timeout       string   `json:"timeout" yaml:"timeout" toml:"timeout"` // duration string in go duration format (e.g.: 2m)
	Retries       int      `json:"retries" yaml:"retries" toml:"retries"` // attempts in total, 1 means no retry
	RetryCooldown string   `json:"retryCooldown" yaml:"retryCooldown" toml:"retry_cooldown"`
	Output        string   `json:"output" yaml:"output" toml:"output"`
	SaveTo        string   `json:"saveTo" yaml:"saveTo" toml:"save_to"`
	Options       []string `json:"options" yaml:"options" toml:"options"` // key=value model options
	Spinner       bool     `json:"spinner" yaml:"spinner" toml:"spinner"`
	Verbose       bool     `json:"verbose" yaml:"verbose" toml:"verbose"`
}

func DefaultConfig() Config {
	return Config{
		Provider:      llm.ProviderOllama,
		Model:         llm.DefaultOllamaModel,
		Prompt:        pets.DefaultPrompt,
		Timeout:       "2m",
		Retries:       1,
		RetryCooldown: "1s",
		Output:        render.FormatText,
	}
}

// LoadConfigFile decodes the TOML file at path over cfg. An empty path looks up
// $XDG_CONFIG_HOME/pets/config.toml and ~/.config/pets/config.toml, a missing file there is not an error.
func LoadConfigFile(path string, cfg *Config) error {
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return errors.Wrapf(err, "failed to parse config %s", path)
		}
		return nil
	}
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(p, cfg); err != nil {
			return errors.Wrapf(err, "failed to parse config %s", p)
		}
		return nil
	}
	return nil
}

// ApplyEnv overrides cfg with OLLAMA_HOST, PETS_MODEL and PETS_API_KEY when set.
// For the openai provider OLLAMA_HOST points at the server's /v1 endpoint.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		host := strings.TrimSuffix(lo.If(strings.Contains(v, "://"), v).Else("http://"+v), "/")
		cfg.Url = lo.If(cfg.Provider == llm.ProviderOpenAI, host+"/v1/").Else(host)
	}
	if v := os.Getenv("PETS_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PETS_API_KEY"); v != "" {
		cfg.ApiKey = v
	}
}

func configPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "pets", "config.toml"))
	}
	if home, _ := os.UserHomeDir(); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "pets", "config.toml"))
	}
	return paths
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", name, value)
	}
	return d, nil
}
