package llm

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

// Ark serves an OpenAI-compatible protocol at this endpoint.
const defaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

// DoubaoClient implements ports.ChatCompleter against the Ark (Doubao)
// chat-completion API. The underlying SDK client is built lazily and
// rebuilt when the credentials change.
type DoubaoClient struct {
	settings *Settings

	mu        sync.Mutex
	client    *openai.Client
	clientKey string
}

func NewDoubaoClient(settings *Settings) *DoubaoClient {
	return &DoubaoClient{settings: settings}
}

func (c *DoubaoClient) Configured() bool {
	return c.settings.Current().Configured()
}

func (c *DoubaoClient) ModelName() string {
	return c.settings.Current().Model
}

func (c *DoubaoClient) Complete(ctx context.Context, system string, history []ports.ChatMessage, opts ports.ChatOptions) (string, error) {
	cfg := c.settings.Current()
	if !cfg.Configured() {
		return "", ports.ErrChatNotConfigured
	}

	model := opts.Model
	if model == "" {
		model = cfg.Model
	}

	client := c.clientFor(cfg.APIKey, cfg.BaseURL)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, msg := range history {
		switch msg.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	} else {
		params.Temperature = openai.Float(0)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errs.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *DoubaoClient) clientFor(apiKey, baseURL string) *openai.Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	key := apiKey + "|" + baseURL

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && c.clientKey == key {
		return c.client
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	c.client = &client
	c.clientKey = key
	return c.client
}
