package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/haulware/loadlens/internal/domain"
	"github.com/haulware/loadlens/internal/metrics"
)

// Generator produces answer text via the provider's chat-completions
// endpoint. Each call is bounded by a timeout; transient failures (429,
// 5xx, timeouts) get one retry when enabled, so a request costs at most
// two provider calls.
type Generator struct {
	client         *openai.Client
	model          string
	temperature    float32
	timeout        time.Duration
	retryTransient bool
	provider       string
	logger         *zap.Logger
}

// GeneratorConfig holds the completion provider settings.
type GeneratorConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float32
	Timeout        time.Duration
	RetryTransient bool
	Provider       string
	Logger         *zap.Logger
}

// NewGenerator creates an OpenAI-compatible completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Generator{
		client:         openai.NewClientWithConfig(clientCfg),
		model:          cfg.Model,
		temperature:    cfg.Temperature,
		timeout:        timeout,
		retryTransient: cfg.RetryTransient,
		provider:       cfg.Provider,
		logger:         cfg.Logger,
	}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := g.complete(ctx, req)
	if err != nil && g.retryTransient && isTransient(err) && ctx.Err() == nil {
		metrics.LLMRetriesTotal.WithLabelValues(g.provider, g.model).Inc()
		g.logger.Warn("Retrying transient completion failure", zap.Error(err))
		resp, err = g.complete(ctx, req)
	}
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "completion", "error").Inc()
		return "", parseAPIError(err, domain.ErrGenerationFailed)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "completion", "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationFailed)
	}

	metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "completion", "success").Inc()
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.
			WithLabelValues(g.provider, g.model, "completion", "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.
			WithLabelValues(g.provider, g.model, "completion", "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}

func (g *Generator) complete(
	ctx context.Context, req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(callCtx, req)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	metrics.LLMRequestDuration.
		WithLabelValues(g.provider, g.model, "completion").
		Observe(time.Since(start).Seconds())
	return resp, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
