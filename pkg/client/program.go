package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/savioxavier/termlink"

	"github.com/integrail/pets-cli/pkg/llm"
	"github.com/integrail/pets-cli/pkg/log"
	"github.com/integrail/pets-cli/pkg/pets"
	"github.com/integrail/pets-cli/pkg/render"
	"github.com/integrail/pets-cli/pkg/structured"
	"github.com/integrail/pets-cli/pkg/util"
)

type Option func(p *Program)

// WithClient replaces the client built from the config.
func WithClient(client llm.Client) Option {
	return func(p *Program) {
		p.client = client
	}
}

func WithOutput(out io.Writer) Option {
	return func(p *Program) {
		p.out = out
	}
}

// Program asks the model about the pets in the configured prompt and prints them.
type Program struct {
	cfg     Config
	client  llm.Client
	out     io.Writer
	request llm.ChatRequest
	spinner func(ctx context.Context, title string, fn func(ctx context.Context) error) error
}

func NewProgram(cfg Config, opts ...Option) (*Program, error) {
	timeout, err := parseDuration("timeout", cfg.Timeout)
	if err != nil {
		return nil, err
	}
	cooldown, err := parseDuration("retry cooldown", cfg.RetryCooldown)
	if err != nil {
		return nil, err
	}
	options, err := util.ParseOptions(cfg.Options)
	if err != nil {
		return nil, err
	}
	if _, err := render.Render(cfg.Output, pets.PetList{}); err != nil {
		return nil, err
	}

	p := &Program{
		cfg: cfg,
		out: os.Stdout,
		request: llm.ChatRequest{
			Messages:      pets.Messages(cfg.Prompt),
			Model:         cfg.Model,
			Options:       options,
			MaxRetries:    cfg.Retries,
			RetryCooldown: cooldown,
		},
		spinner: WithSpinner,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client, err = llm.New(cfg.Provider, cfg.Url, cfg.ApiKey, timeout)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Request is the chat request sent by Run, without the response schema.
func (p *Program) Request() llm.ChatRequest {
	return p.request
}

// Run performs the single chat call, validates the reply and writes it out.
func (p *Program) Run(ctx context.Context) (*pets.PetList, error) {
	var list *pets.PetList
	generate := func(ctx context.Context) error {
		var err error
		list, _, err = structured.Generate[pets.PetList](ctx, p.client, p.request)
		return err
	}

	var err error
	if p.cfg.Spinner {
		err = p.spinner(ctx, fmt.Sprintf("Asking %s about your pets...", p.request.Model), generate)
	} else {
		err = generate(ctx)
	}
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "parsed pets", "count", len(list.Pets))

	if p.cfg.SaveTo == "" {
		return list, render.Write(p.out, p.cfg.Output, *list)
	}
	rendered, err := render.Render(p.cfg.Output, *list)
	if err != nil {
		return nil, err
	}
	return list, p.save(rendered)
}

func (p *Program) save(rendered string) error {
	fileName, err := filepath.Abs(p.cfg.SaveTo)
	if err != nil {
		return errors.Wrapf(err, "invalid output file %q", p.cfg.SaveTo)
	}
	if err := os.WriteFile(fileName, []byte(rendered), 0o644); err != nil {
		return errors.Wrapf(err, "failed to save pets to %s", fileName)
	}
	name := filepath.Base(fileName)
	_, err = fmt.Fprintln(p.out, "pets saved to "+termlink.ColorLink(name, fmt.Sprintf("file://%s", fileName), "italic green"))
	return err
}
