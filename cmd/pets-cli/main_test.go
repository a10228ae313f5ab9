package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

func fakeOllama(t *testing.T, models *[]string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		*models = append(*models, body.Model)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": body.Model,
			"message": map[string]any{
				"role":    "assistant",
				"content": `{"pets":[{"name":"Luna","animal":"cat","age":5,"color":"grey","favourite_toy":"yarn"}]}`,
			},
			"done": true,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func isolateConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OLLAMA_HOST", "")
	t.Setenv("PETS_MODEL", "")
	t.Setenv("PETS_API_KEY", "")
}

func TestRootCommand(t *testing.T) {
	RegisterTestingT(t)
	isolateConfig(t)

	var models []string
	server := fakeOllama(t, &models)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--url", server.URL, "--output", "yaml"})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	Expect(cmd.Execute()).To(Succeed())

	Expect(models).To(Equal([]string{"llama3.2"}))
	Expect(out.String()).To(MatchYAML("pets:\n- name: Luna\n  animal: cat\n  age: 5\n  color: grey\n  favourite_toy: yarn\n"))
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	RegisterTestingT(t)
	isolateConfig(t)

	var models []string
	server := fakeOllama(t, &models)
	configFile := filepath.Join(t.TempDir(), "pets.toml")
	Expect(os.WriteFile(configFile, []byte(`
url = "`+server.URL+`"
model = "from-file"
output = "json"
`), 0o644)).To(Succeed())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", configFile, "--model", "from-flag"})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	Expect(cmd.Execute()).To(Succeed())

	Expect(models).To(Equal([]string{"from-flag"}))
	Expect(out.String()).To(MatchJSON(`{"pets":[{"name":"Luna","animal":"cat","age":5,"color":"grey","favourite_toy":"yarn"}]}`))
}

func TestSchemaCommand(t *testing.T) {
	RegisterTestingT(t)
	isolateConfig(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"schema"})
	cmd.SetOut(&out)
	Expect(cmd.Execute()).To(Succeed())

	var schema map[string]any
	Expect(json.Unmarshal(out.Bytes(), &schema)).To(Succeed())
	Expect(schema).To(HaveKeyWithValue("required", ConsistOf("pets")))
}

func TestSchemaCommandIgnoresConfigFile(t *testing.T) {
	RegisterTestingT(t)
	isolateConfig(t)

	dir := os.Getenv("XDG_CONFIG_HOME")
	Expect(os.MkdirAll(filepath.Join(dir, "pets"), 0o755)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, "pets", "config.toml"), []byte(`model = `), 0o644)).To(Succeed())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"schema"})
	cmd.SetOut(&out)
	Expect(cmd.Execute()).To(Succeed())
	Expect(out.String()).To(ContainSubstring(`"pets"`))

	cmd = newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	Expect(cmd.Execute()).To(MatchError(ContainSubstring("failed to parse config")))
}

func TestOpenAIProviderUsesOllamaHost(t *testing.T) {
	RegisterTestingT(t)
	isolateConfig(t)

	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1733443200,
			"model":   "llama3.2",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": `{"pets":[{"name":"Loki","animal":"cat","age":2,"color":null,"favourite_toy":"tennis ball"}]}`,
				},
			}},
		})
	}))
	t.Cleanup(server.Close)
	t.Setenv("OLLAMA_HOST", strings.TrimPrefix(server.URL, "http://"))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--provider", "openai"})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	Expect(cmd.Execute()).To(Succeed())

	Expect(paths).To(Equal([]string{"/v1/chat/completions"}))
	Expect(out.String()).To(ContainSubstring(`Pet{name: "Loki"`))
}

func TestRootCommandFails(t *testing.T) {
	RegisterTestingT(t)
	isolateConfig(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--output", "xml"})
	cmd.SetOut(&bytes.Buffer{})
	Expect(cmd.Execute()).To(MatchError(ContainSubstring("unknown output format")))
}
