package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/watchit/watchit/pkg/models"
)

// LocalConfig configures the on-device judge backend: a plain HTTP client
// against an Ollama-/OpenAI-compatible chat completions endpoint.
type LocalConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LocalClient implements Capability and Advisor against a local chat
// completions endpoint. Request/response shapes follow Ollama's /api/chat
// (single "message" field per choice, non-streaming).
type LocalClient struct {
	cfg        LocalConfig
	httpClient *http.Client
}

// NewLocalClient builds a LocalClient, applying sane defaults for an
// unconfigured timeout.
func NewLocalClient(cfg LocalConfig) *LocalClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &LocalClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Judge implements Capability.
func (c *LocalClient) Judge(ctx context.Context, req Request) (models.JudgeResult, error) {
	content, err := c.chat(ctx, systemPrompt(req.Guidance), userPrompt(req))
	if err != nil {
		if ctx.Err() != nil {
			return models.JudgeResult{}, ctx.Err()
		}
		slog.Warn("judge call failed, using fallback", "error", err)
		return models.FallbackOnCallFailure(), nil
	}

	result, ok := parseJudgeResult(content)
	if !ok {
		slog.Warn("judge returned unparseable output, using fallback", "raw", truncate(content, 200))
		return models.FallbackOnParseFailure(), nil
	}
	return result, nil
}

// Plan implements Advisor.
func (c *LocalClient) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	content, err := c.chat(ctx, planSystemPrompt, planUserPrompt(req))
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
func (c *LocalClient) Summarize(ctx context.Context, samples []OverrideSample) (Summary, error) {
	content, err := c.chat(ctx, summarizeSystemPrompt, summarizeUserPrompt(samples))
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

func (c *LocalClient) chat(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call judge endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("judge endpoint returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return parsed.Message.Content, nil
}

// parseJudgeResult extracts and validates a JudgeResult from raw model
// output, first trying a direct unmarshal, then falling back to extracting
// the first balanced JSON object.
func parseJudgeResult(raw string) (models.JudgeResult, bool) {
	var result models.JudgeResult
	if err := json.Unmarshal([]byte(raw), &result); err == nil && result.Action != "" {
		return result, true
	}

	obj, ok := extractJSONObject(raw)
	if !ok {
		return models.JudgeResult{}, false
	}
	if err := json.Unmarshal([]byte(obj), &result); err != nil || result.Action == "" {
		return models.JudgeResult{}, false
	}
	return result, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
