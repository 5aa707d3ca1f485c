package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jmylchreest/folio/internal/logger"
	"github.com/jmylchreest/folio/pkg/profile"
	"github.com/jmylchreest/folio/pkg/workflow"
)

// OpenAI asks an OpenAI-compatible chat model for the page.
//
// Blocking calls return {"answer": content}. Streaming calls return the
// deltas as a fragment sequence closed by a message_end fragment.
type OpenAI struct {
	client openai.Client
	model  string
	stream bool
}

// NewOpenAI creates an OpenAI generator.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
		stream: cfg.Stream,
	}, nil
}

func (g *OpenAI) params(req Request) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(profile.SystemPrompt),
			openai.UserMessage(req.Profile.Prompt()),
		},
		MaxTokens:   openai.Int(int64(maxTokens(req))),
		Temperature: openai.Float(req.Temperature),
	}
}

// Generate implements Generator.
func (g *OpenAI) Generate(ctx context.Context, req Request) (*Output, error) {
	if g.stream {
		return g.generateStream(ctx, req)
	}

	start := time.Now()

	resp, err := g.client.Chat.Completions.New(ctx, g.params(req))
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	logger.Debug("openai completion", "model", resp.Model, "finish_reason", resp.Choices[0].FinishReason)

	return &Output{
		Response: map[string]any{AnswerKey: resp.Choices[0].Message.Content},
		Model:    resp.Model,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		Duration: time.Since(start),
	}, nil
}

func (g *OpenAI) generateStream(ctx context.Context, req Request) (*Output, error) {
	start := time.Now()

	params := g.params(req)
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}

	stream := g.client.Chat.Completions.NewStreaming(ctx, params)
	defer func() { _ = stream.Close() }()

	var (
		fragments []any
		usage     Usage
		model     = g.model
	)
	for stream.Next() {
		chunk := stream.Current()
		if chunk.Model != "" {
			model = chunk.Model
		}
		if chunk.Usage.TotalTokens > 0 {
			usage = Usage{
				InputTokens:  int(chunk.Usage.PromptTokens),
				OutputTokens: int(chunk.Usage.CompletionTokens),
			}
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				fragments = append(fragments, workflow.Fragment("delta", choice.Delta.Content))
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("OpenAI stream error: %w", err)
	}
	fragments = append(fragments, workflow.Fragment("message_end", ""))

	logger.Debug("openai stream finished", "model", model, "fragments", len(fragments))

	return &Output{
		Response: fragments,
		Model:    model,
		Usage:    usage,
		Duration: time.Since(start),
	}, nil
}

// Name returns the generator identifier.
func (g *OpenAI) Name() string {
	return "openai"
}

// Model returns the configured model name.
func (g *OpenAI) Model() string {
	return g.model
}

var _ Generator = (*OpenAI)(nil)
