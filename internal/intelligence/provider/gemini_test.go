package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/pkg/errors"
)

func geminiTextResponse(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestGeminiAnalyze(t *testing.T) {
	t.Parallel()

	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiTextResponse("```json\n" +
			`{"healthSummary":"steady","riskAreas":"none","recommendations":"hydrate"}` + "\n```")))
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiConfig{APIKey: "secret", Endpoint: srv.URL}, nil)

	res, err := p.Analyze(context.Background(), report.AnalysisInput{
		Observations: []report.SymptomObservation{{SymptomName: "Nausea", Severity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, "steady", res.HealthSummary)
	assert.Equal(t, "none", res.RiskAreas)
	assert.Equal(t, "hydrate", res.Recommendations)
	assert.Equal(t, NameGemini, res.Provider)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "Nausea: Severity 3/10")
}

func TestGeminiAnalyzeUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiConfig{Endpoint: srv.URL}, nil)

	_, err := p.Analyze(context.Background(), report.AnalysisInput{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProviderCallFailed))
}

func TestGeminiAnalyzeEmptyCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiConfig{Endpoint: srv.URL}, nil)

	_, err := p.Analyze(context.Background(), report.AnalysisInput{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProviderBadResponse))
}

func TestGeminiAvailable(t *testing.T) {
	t.Parallel()

	t.Run("acknowledges probe", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(geminiTextResponse("OK")))
		}))
		defer srv.Close()

		p := NewGeminiProvider(GeminiConfig{Endpoint: srv.URL}, nil)
		assert.True(t, p.Available(context.Background()))
	})

	t.Run("upstream failure reports unavailable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		p := NewGeminiProvider(GeminiConfig{Endpoint: srv.URL}, nil)
		assert.False(t, p.Available(context.Background()))
	})

	t.Run("unreachable endpoint reports unavailable", func(t *testing.T) {
		t.Parallel()
		p := NewGeminiProvider(GeminiConfig{Endpoint: "http://127.0.0.1:1"}, nil)
		assert.False(t, p.Available(context.Background()))
	})
}
