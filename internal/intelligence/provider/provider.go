// Package provider implements the analysis-provider side of the report
// pipeline: the AnalysisProvider contract, the availability-based fallback
// registry, and the three provider variants (OpenAI, Gemini, and the local
// heuristic fallback).
package provider

import (
	"context"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
)

// Canonical provider identifiers.  Identifiers are registry keys and must be
// unique across registered providers.
const (
	NameOpenAI    = "openai"
	NameGemini    = "gemini"
	NameHeuristic = "heuristic"
)

// AnalysisProvider wraps one analysis backend.
//
// Analyze turns an AnalysisInput into an AnalysisResult.  Transport failures,
// non-2xx upstream statuses, and malformed envelopes surface as provider-call
// errors; unparseable analysis *content* never does, since content parsing
// degrades through section markers down to a sentinel result (see parse.go).
//
// Available is a live probe and may issue a network call; callers must treat
// it as blocking and possibly slow, not as a cached flag.  It never panics and
// collapses every internal failure to false.
type AnalysisProvider interface {
	Analyze(ctx context.Context, in report.AnalysisInput) (report.AnalysisResult, error)
	Available(ctx context.Context) bool
	Name() string
}
