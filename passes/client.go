package passes

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ChatRequest is one two-message completion request: the pass's assembled
// instruction string plus the per-record user prompt. Schema, when set,
// requests strict structured output for backends that honor it.
type ChatRequest struct {
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}

// ChatCaller issues one chat completion and returns the reply text. An empty
// string with a nil error means the backend produced no usable reply; callers
// treat errors and empty replies identically (record passes through
// unchanged). Implementations make exactly one attempt per call.
type ChatCaller interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// defaultCallTimeout bounds one model call. On timeout only that record's
// request fails; sibling requests in the slice keep running.
const defaultCallTimeout = 120 * time.Second

// OpenAIClient talks to an OpenAI-compatible chat-completions endpoint
// (vLLM, llama.cpp server, OpenAI itself). One client is scoped to one pass
// run and carries that pass's sampling settings.
type OpenAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// NewOpenAIClient builds a client for one pass run. baseURL selects the
// endpoint (e.g. "http://localhost:8000/v1"); retries are disabled so a
// failed call is a failed record, nothing more.
func NewOpenAIClient(baseURL, apiKey, model string, temperature float64, maxTokens int) *OpenAIClient {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIClient{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     defaultCallTimeout,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if c.model == "" {
		return "", errors.New("OpenAIClient: model is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
