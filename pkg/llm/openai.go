package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/integrail/pets-cli/pkg/log"
)

// DefaultOpenAIURL is the OpenAI-compatible endpoint exposed by a local Ollama server.
const DefaultOpenAIURL = "http://localhost:11434/v1/"

const responseSchemaName = "response"

func NewOpenAI(baseURL, apiKey string, timeout time.Duration) Client {
	baseURL = lo.If(baseURL == "", DefaultOpenAIURL).Else(baseURL)
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		// ollama ignores the key but expects one to be sent
		option.WithAPIKey(lo.If(apiKey == "", "ollama").Else(apiKey)),
		option.WithRequestTimeout(lo.If(timeout == 0, 120*time.Second).Else(timeout)),
		option.WithMaxRetries(0),
	)
	return &openaiClient{
		baseURL: baseURL,
		client:  client,
	}
}

type openaiClient struct {
	baseURL string
	client  openai.Client
}

func (o *openaiClient) Chat(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	model := lo.If(request.Model != "", request.Model).Else(DefaultOllamaModel)
	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: lo.Map(request.Messages, func(m Message, _ int) openai.ChatCompletionMessageParamUnion {
			switch m.Role {
			case RoleSystem:
				return openai.SystemMessage(m.Content)
			case RoleAssistant:
				return openai.AssistantMessage(m.Content)
			default:
				return openai.UserMessage(m.Content)
			}
		}),
	}
	if temperature, ok := numberOption(request.Options, "temperature"); ok {
		params.Temperature = openai.Float(temperature)
	}
	if seed, ok := numberOption(request.Options, "seed"); ok {
		params.Seed = openai.Int(int64(seed))
	}
	if len(request.Format) > 0 {
		var schema map[string]any
		if err := json.Unmarshal(request.Format, &schema); err != nil {
			return nil, errors.Wrapf(err, "invalid response format schema")
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   responseSchemaName,
					Schema: schema,
				},
			},
		}
	}
	log.Debug(ctx, "sending openai chat request", "url", o.baseURL, "model", model, "messages", len(params.Messages))

	start := time.Now()
	res, err := withRetries(ctx, request, func() (*openai.ChatCompletion, error) {
		return o.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate content for model %q", model)
	}
	if len(res.Choices) == 0 {
		return nil, errors.Errorf("response does not contain any result")
	}
	content := res.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, errors.Errorf("model %q returned empty content", model)
	}
	return &ChatResponse{
		Content:       content,
		Model:         res.Model,
		DoneReason:    res.Choices[0].FinishReason,
		TotalDuration: time.Since(start),
	}, nil
}

func numberOption(options map[string]any, name string) (float64, bool) {
	switch v := options[name].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
