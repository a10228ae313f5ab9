package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/integrail/pets-cli/pkg/log"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
)

func NewOllama(ollamaUrl, ollamaApiKey string, timeout time.Duration) Client {
	return &ollamaClient{
		ollamaApiKey: ollamaApiKey,
		ollamaUrl:    lo.If(ollamaUrl == "", DefaultOllamaURL).Else(strings.TrimSuffix(ollamaUrl, "/")),
		timeout:      lo.If(timeout == 0, 120*time.Second).Else(timeout),
	}
}

type ollamaClient struct {
	ollamaApiKey string
	ollamaUrl    string
	timeout      time.Duration
}

type RoundTripFn func(req *http.Request) (*http.Response, error)

func (f RoundTripFn) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func (o *ollamaClient) Chat(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	baseURL, err := url.Parse(o.ollamaUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ollama url %q", o.ollamaUrl)
	}
	httpClient := &http.Client{Timeout: o.timeout}
	if o.ollamaApiKey != "" {
		httpClient.Transport = RoundTripFn(func(req *http.Request) (*http.Response, error) {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.ollamaApiKey))
			return http.DefaultTransport.RoundTrip(req)
		})
	}
	client := api.NewClient(baseURL, httpClient)

	chatRequest := &api.ChatRequest{
		Model: lo.If(request.Model != "", request.Model).Else(DefaultOllamaModel),
		Messages: lo.Map(request.Messages, func(m Message, _ int) api.Message {
			return api.Message{Role: m.Role, Content: m.Content}
		}),
		Stream:  lo.ToPtr(false),
		Format:  request.Format,
		Options: request.Options,
	}
	log.Debug(ctx, "sending ollama chat request", "url", o.ollamaUrl, "model", chatRequest.Model, "messages", len(chatRequest.Messages))

	res, err := withRetries(ctx, request, func() (*ChatResponse, error) {
		var out ChatResponse
		var content strings.Builder
		err := client.Chat(ctx, chatRequest, func(response api.ChatResponse) error {
			content.WriteString(response.Message.Content)
			if response.Done {
				out.Model = response.Model
				out.DoneReason = response.DoneReason
				out.TotalDuration = response.TotalDuration
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		out.Content = content.String()
		return &out, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to process chat with model %q", chatRequest.Model)
	}
	if strings.TrimSpace(res.Content) == "" {
		return nil, errors.Errorf("model %q returned empty content", chatRequest.Model)
	}
	log.Debug(ctx, "ollama chat done", "model", res.Model, "doneReason", res.DoneReason, "duration", res.TotalDuration)
	return res, nil
}
