package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/integrail/pets-cli/internal/build"
	"github.com/integrail/pets-cli/pkg/client"
	"github.com/integrail/pets-cli/pkg/log"
	"github.com/integrail/pets-cli/pkg/pets"
	"github.com/integrail/pets-cli/pkg/render"
	"github.com/integrail/pets-cli/pkg/structured"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		panic(err)
	}
}

func newRootCmd() *cobra.Command {
	cfg := client.DefaultConfig()
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "pets",
		Version:       build.Version,
		Short:         "Ask a local LLM about your pets",
		Long:          "Sends a prompt describing pets to an Ollama (or OpenAI-compatible) server, constrains the reply to the PetList JSON schema and prints the parsed pets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, configFile, &cfg); err != nil {
				return err
			}
			ctx := log.WithLogger(cmd.Context(), log.New(cmd.ErrOrStderr(), cfg.Verbose))
			p, err := client.NewProgram(cfg, client.WithOutput(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			_, err = p.Run(ctx)
			return err
		},
	}
	flags := rootCmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "TOML config file (default: $XDG_CONFIG_HOME/pets/config.toml)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Log requests and replies to stderr")
	flags.StringVarP(&cfg.Provider, "provider", "P", cfg.Provider, "LLM provider: ollama or openai")
	flags.StringVarP(&cfg.Url, "url", "u", cfg.Url, "Inference server URL (env OLLAMA_HOST, default http://localhost:11434)")
	flags.StringVarP(&cfg.ApiKey, "key", "k", cfg.ApiKey, "API key sent as bearer token (env PETS_API_KEY)")
	flags.StringVarP(&cfg.Model, "model", "m", cfg.Model, "Model name (env PETS_MODEL)")
	flags.StringVar(&cfg.Prompt, "prompt", cfg.Prompt, "Prompt describing the pets")
	flags.StringVarP(&cfg.Timeout, "timeout", "t", cfg.Timeout, "Request timeout (duration, e.g. 2m)")
	flags.IntVarP(&cfg.Retries, "retries", "r", cfg.Retries, "Attempts in total, 1 disables retries")
	flags.StringVar(&cfg.RetryCooldown, "retry-cooldown", cfg.RetryCooldown, "Wait between attempts (duration)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: "+strings.Join(render.Formats, ", "))
	flags.StringVarP(&cfg.SaveTo, "save", "s", cfg.SaveTo, "Write output to file instead of stdout")
	flags.StringSliceVarP(&cfg.Options, "option", "O", cfg.Options, "Model options as key=value (e.g. temperature=0)")
	flags.BoolVar(&cfg.Spinner, "spinner", cfg.Spinner, "Show a spinner while waiting for the model")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema sent to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := structured.Schema[pets.PetList]()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return err
		},
	})
	return rootCmd
}

// loadConfig layers defaults, config file, environment and then explicitly set flags.
func loadConfig(cmd *cobra.Command, configFile string, cfg *client.Config) error {
	flagged := *cfg
	if err := client.LoadConfigFile(configFile, cfg); err != nil {
		return err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	// the provider decides how OLLAMA_HOST is read
	set("provider", func() { cfg.Provider = flagged.Provider })
	client.ApplyEnv(cfg)

	set("url", func() { cfg.Url = flagged.Url })
	set("key", func() { cfg.ApiKey = flagged.ApiKey })
	set("model", func() { cfg.Model = flagged.Model })
	set("prompt", func() { cfg.Prompt = flagged.Prompt })
	set("timeout", func() { cfg.Timeout = flagged.Timeout })
	set("retries", func() { cfg.Retries = flagged.Retries })
	set("retry-cooldown", func() { cfg.RetryCooldown = flagged.RetryCooldown })
	set("output", func() { cfg.Output = flagged.Output })
	set("save", func() { cfg.SaveTo = flagged.SaveTo })
	set("option", func() { cfg.Options = flagged.Options })
	set("spinner", func() { cfg.Spinner = flagged.Spinner })
	set("verbose", func() { cfg.Verbose = flagged.Verbose })
	return nil
}
