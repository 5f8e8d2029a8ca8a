package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/watchit/watchit/pkg/models"
)

// AnthropicConfig configures the hosted judge backend.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// AnthropicClient implements Capability and Advisor against the hosted
// Anthropic Messages API, used when judge_provider is set to "anthropic"
// instead of the default on-device HTTP endpoint.
type AnthropicClient struct {
	cfg    AnthropicConfig
	client anthropic.Client
}

// NewAnthropicClient builds an AnthropicClient from cfg.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}
	return &AnthropicClient{
		cfg:    cfg,
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
	}
}

// Judge implements Capability.
func (c *AnthropicClient) Judge(ctx context.Context, req Request) (models.JudgeResult, error) {
	content, err := c.complete(ctx, systemPrompt(req.Guidance), userPrompt(req))
	if err != nil {
		if ctx.Err() != nil {
			return models.JudgeResult{}, ctx.Err()
		}
		slog.Warn("anthropic judge call failed, using fallback", "error", err)
		return models.FallbackOnCallFailure(), nil
	}

	result, ok := parseJudgeResult(content)
	if !ok {
		slog.Warn("anthropic judge returned unparseable output, using fallback", "raw", truncate(content, 200))
		return models.FallbackOnParseFailure(), nil
	}
	return result, nil
}

// Plan implements Advisor.
func (c *AnthropicClient) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	content, err := c.complete(ctx, planSystemPrompt, planUserPrompt(req))
	if err != nil {
		return PlanResult{}, err
	}

	raw, ok := extractJSONObject(content)
	if !ok {
		return PlanResult{}, fmt.Errorf("planner advisor: no JSON object in response")
	}

	var parsed struct {
		NextTool string `json:"next_tool"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return PlanResult{}, fmt.Errorf("planner advisor: %w", err)
	}
	return PlanResult{NextTool: models.Tool(parsed.NextTool), Reason: parsed.Reason}, nil
}

// Summarize implements Summarizer.
func (c *AnthropicClient) Summarize(ctx context.Context, samples []OverrideSample) (Summary, error) {
	content, err := c.complete(ctx, summarizeSystemPrompt, summarizeUserPrompt(samples))
	if err != nil {
		return Summary{}, err
	}

	raw, ok := extractJSONObject(content)
	if !ok {
		return Summary{}, fmt.Errorf("guardian summarizer: no JSON object in response")
	}

	var parsed struct {
		Guidance string   `json:"guidance"`
		Patterns []string `json:"patterns"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Summary{}, fmt.Errorf("guardian summarizer: %w", err)
	}
	return Summary{Guidance: parsed.Guidance, Patterns: parsed.Patterns}, nil
}

func (c *AnthropicClient) complete(ctx context.Context, system, user string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages.new: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic response contained no text block")
}
