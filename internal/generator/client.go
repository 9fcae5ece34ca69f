package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/adaptive-quiz/backend/internal/avail"
	"github.com/adaptive-quiz/backend/internal/config"
	"github.com/adaptive-quiz/backend/internal/metrics"
	"github.com/adaptive-quiz/backend/internal/models"
	"go.uber.org/zap"
)

// MockModel is reported as usedModel when no oracle credential is configured.
const MockModel = "mock"

// LLMClient is the interface every oracle implementation satisfies.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw completion text and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// NewClient builds the oracle client for the configured provider. A missing
// credential yields an unavailable handle, which puts the generator in mock
// mode.
func NewClient(ctx context.Context, cfg *config.Config) (avail.Handle[LLMClient], string, error) {
	if !cfg.OracleConfigured() {
		return avail.Unavailable[LLMClient]("no credential for oracle provider " + cfg.Oracle.Provider), MockModel, nil
	}

	switch cfg.Oracle.Provider {
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.Oracle.GoogleAPIKey, cfg.Oracle.GeminiModel)
		if err != nil {
			return avail.Unavailable[LLMClient](err.Error()), MockModel, err
		}
		return avail.Ready[LLMClient](c), cfg.Oracle.GeminiModel, nil
	case config.ProviderAnthropic:
		return avail.Ready[LLMClient](NewAnthropicClient(cfg.Oracle.AnthropicAPIKey, cfg.Oracle.AnthropicModel)), cfg.Oracle.AnthropicModel, nil
	case config.ProviderCLI:
		return avail.Ready[LLMClient](NewCLIClient(cfg.Oracle.CLIPath)), "cli", nil
	}
	return avail.Unavailable[LLMClient]("unknown provider"), MockModel, fmt.Errorf("unknown oracle provider %q", cfg.Oracle.Provider)
}

// Request describes one batch of questions to generate.
type Request struct {
	Subject string
	Topic   string
	Level   models.Difficulty
	Count   int
}

// Result is the outcome of a generation call. ExtractionErr is set when the
// oracle answered but no items could be recovered from its text; Items is
// then empty.
type Result struct {
	Items         []models.Question
	UsedModel     string
	ExtractionErr error
}

// Generator turns a quiz request into questions, either through the oracle
// or, when none is configured, as deterministic placeholders.
type Generator struct {
	llm     avail.Handle[LLMClient]
	model   string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewGenerator(llm avail.Handle[LLMClient], model string, logger *zap.Logger, m *metrics.Metrics) *Generator {
	if !llm.IsReady() {
		model = MockModel
	}
	return &Generator{llm: llm, model: model, logger: logger, metrics: m}
}

func (g *Generator) ModelName() string {
	return g.model
}

func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	llm, ok := g.llm.Get()
	if !ok {
		g.metrics.OracleRequests.WithLabelValues(MockModel, "mock").Inc()
		return &Result{Items: MockItems(req.Subject, req.Topic, req.Count), UsedModel: MockModel}, nil
	}

	resp, err := llm.Generate(ctx, SystemPrompt(), BuildUserPrompt(req))
	if err != nil {
		g.metrics.OracleRequests.WithLabelValues(g.model, "error").Inc()
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	g.logger.Debug("oracle responded",
		zap.String("model", g.model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("output_tokens", resp.OutputTokens),
	)

	items, err := ParseItems(resp.Content)
	if err != nil {
		stage := "unknown"
		var ee *ExtractionError
		if errors.As(err, &ee) {
			stage = string(ee.Stage)
		}
		g.metrics.OracleRequests.WithLabelValues(g.model, "unparseable").Inc()
		g.metrics.ExtractionFailures.WithLabelValues(stage).Inc()
		g.logger.Error("could not extract questions from oracle response",
			zap.String("model", g.model),
			zap.String("stage", stage),
			zap.Error(err),
			zap.String("text", truncate(resp.Content, 2000)),
		)
		return &Result{Items: []models.Question{}, UsedModel: g.model, ExtractionErr: err}, nil
	}

	for _, warning := range CheckItems(items) {
		g.logger.Warn("generated item check", zap.String("model", g.model), zap.String("warning", warning))
	}

	g.metrics.OracleRequests.WithLabelValues(g.model, "ok").Inc()
	return &Result{Items: items, UsedModel: g.model}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
