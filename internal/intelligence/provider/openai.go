package provider

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/pkg/errors"
)

const (
	defaultOpenAIModel   = openai.GPT4
	defaultOpenAITimeout = 60 * time.Second
	openAIMaxTokens      = 1500
	openAITemperature    = 0.7

	// Probe settings intentionally stay far below the analysis budget so an
	// unhealthy upstream fails fast during fallback selection.
	probeTimeout   = 10 * time.Second
	probeMaxTokens = 5
	probePrompt    = "Respond with 'OK' if you're available."
)

// OpenAIConfig configures the OpenAI-backed analysis provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional override for proxies and compatible endpoints
	Timeout time.Duration
}

// OpenAIProvider performs analysis through the OpenAI chat completion API.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  logging.Logger
}

func NewOpenAIProvider(cfg OpenAIConfig, logger logging.Logger) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultOpenAITimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("openai-provider"),
	}
}

func (p *OpenAIProvider) Name() string { return NameOpenAI }

func (p *OpenAIProvider) Analyze(ctx context.Context, in report.AnalysisInput) (report.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildAnalysisPrompt(in)},
		},
		MaxTokens:   openAIMaxTokens,
		Temperature: openAITemperature,
	})
	if err != nil {
		return report.AnalysisResult{}, errors.Wrap(err, errors.ErrCodeProviderCallFailed,
			"openai chat completion failed").WithDetail(NameOpenAI)
	}
	if len(resp.Choices) == 0 {
		return report.AnalysisResult{}, errors.New(errors.ErrCodeProviderBadResponse,
			"openai response contained no choices").WithDetail(NameOpenAI)
	}

	return parseAnalysisContent(resp.Choices[0].Message.Content, NameOpenAI), nil
}

// Available sends a minimal completion request and checks for the expected
// acknowledgement.  Any transport error, empty response, or unexpected content
// counts as unavailable.
func (p *OpenAIProvider) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: probePrompt},
		},
		MaxTokens: probeMaxTokens,
	})
	if err != nil {
		p.logger.Warn("openai availability probe failed", logging.Err(err))
		return false
	}
	if len(resp.Choices) == 0 {
		return false
	}
	return strings.Contains(resp.Choices[0].Message.Content, "OK")
}
