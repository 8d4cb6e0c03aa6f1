package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/pkg/errors"
)

const (
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	defaultGeminiTimeout  = 60 * time.Second

	// Responses are small JSON envelopes; cap the body read so a misbehaving
	// upstream cannot exhaust memory.
	geminiMaxResponseBytes = 4 << 20
)

// GeminiConfig configures the Gemini-backed analysis provider.
type GeminiConfig struct {
	APIKey   string
	Endpoint string // optional generateContent URL override
	Timeout  time.Duration
}

// GeminiProvider performs analysis through the Gemini generateContent REST
// API.  Gemini has no SDK dependency here; the wire format is two levels of
// nesting either way, so a plain HTTP client keeps the surface small.
type GeminiProvider struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	logger     logging.Logger
}

func NewGeminiProvider(cfg GeminiConfig, logger logging.Logger) *GeminiProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultGeminiEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeminiTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &GeminiProvider{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		logger:     logger.Named("gemini-provider"),
	}
}

func (p *GeminiProvider) Name() string { return NameGemini }

// geminiRequest and geminiResponse mirror the generateContent wire format.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Analyze(ctx context.Context, in report.AnalysisInput) (report.AnalysisResult, error) {
	text, err := p.generate(ctx, buildAnalysisPrompt(in))
	if err != nil {
		return report.AnalysisResult{}, err
	}
	return parseAnalysisContent(text, NameGemini), nil
}

// Available sends a minimal generateContent request.  Any transport error or
// non-2xx status counts as unavailable.
func (p *GeminiProvider) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	text, err := p.generate(ctx, probePrompt)
	if err != nil {
		p.logger.Warn("gemini availability probe failed", logging.Err(err))
		return false
	}
	return strings.Contains(text, "OK")
}

// generate posts a single-part prompt and returns the first candidate's text.
func (p *GeminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeProviderCallFailed,
			"failed to encode gemini request").WithDetail(NameGemini)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"?key="+p.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeProviderCallFailed,
			"failed to build gemini request").WithDetail(NameGemini)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeProviderCallFailed,
			"gemini request failed").WithDetail(NameGemini)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, geminiMaxResponseBytes))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeProviderCallFailed,
			"failed to read gemini response").WithDetail(NameGemini)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.New(errors.ErrCodeProviderCallFailed,
			fmt.Sprintf("gemini returned status %d", resp.StatusCode)).WithDetail(NameGemini)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeProviderBadResponse,
			"failed to decode gemini response").WithDetail(NameGemini)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New(errors.ErrCodeProviderBadResponse,
			"gemini response contained no candidates").WithDetail(NameGemini)
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
