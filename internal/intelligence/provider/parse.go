package provider

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
)

// Sentinel section texts used when upstream content cannot be parsed at all.
// Parse failures degrade to these placeholders; they never raise.
const (
	sentinelSummary         = "Analysis completed"
	sentinelRiskAreas       = "No specific risk areas identified"
	sentinelRecommendations = "Continue monitoring symptoms"
)

// structuredEnvelope mirrors the JSON shape the prompt asks providers for.
type structuredEnvelope struct {
	HealthSummary   string `json:"healthSummary"`
	RiskAreas       string `json:"riskAreas"`
	Recommendations string `json:"recommendations"`
}

var (
	codeFenceRe     = regexp.MustCompile("(?s)```(?:json)?")
	sectionMarkerRe = regexp.MustCompile(`(?im)^\s*(?:\d+\.\s*)?(HEALTH_SUMMARY|RISK_AREAS|RECOMMENDATIONS)\s*:`)
)

// parseAnalysisContent turns raw provider content into an AnalysisResult.
// Parsing is defensive, in three stages:
//
//  1. Strict JSON against the requested envelope (after stripping markdown
//     code fences, which some providers wrap around otherwise-valid JSON).
//  2. Case-insensitive section-marker text parsing (HEALTH_SUMMARY: /
//     RISK_AREAS: / RECOMMENDATIONS:), tolerating numbered-list prefixes.
//  3. A sentinel result carrying human-readable placeholder text.  When the
//     content is non-empty free text with no recognisable structure it is
//     preserved as the summary rather than discarded.
func parseAnalysisContent(content, providerName string) report.AnalysisResult {
	cleaned := strings.TrimSpace(codeFenceRe.ReplaceAllString(content, ""))

	// Some providers double-encode the payload as a JSON string.
	if strings.HasPrefix(cleaned, `"`) && strings.HasSuffix(cleaned, `"`) {
		var unquoted string
		if err := json.Unmarshal([]byte(cleaned), &unquoted); err == nil {
			cleaned = strings.TrimSpace(unquoted)
		}
	}

	var env structuredEnvelope
	if err := json.Unmarshal([]byte(cleaned), &env); err == nil {
		if env.HealthSummary != "" || env.RiskAreas != "" || env.Recommendations != "" {
			return report.AnalysisResult{
				HealthSummary:   fallbackText(env.HealthSummary, sentinelSummary),
				RiskAreas:       fallbackText(env.RiskAreas, sentinelRiskAreas),
				Recommendations: fallbackText(env.Recommendations, sentinelRecommendations),
				Provider:        providerName,
			}
		}
	}

	if res, ok := parseSectionMarkers(cleaned, providerName); ok {
		return res
	}

	summary := sentinelSummary
	if cleaned != "" {
		summary = cleaned
	}
	return report.AnalysisResult{
		HealthSummary:   summary,
		RiskAreas:       sentinelRiskAreas,
		Recommendations: sentinelRecommendations,
		Provider:        providerName,
	}
}

// parseSectionMarkers splits content on the three canonical section headers.
// It returns ok=false when no marker is present.
func parseSectionMarkers(content, providerName string) (report.AnalysisResult, bool) {
	locs := sectionMarkerRe.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return report.AnalysisResult{}, false
	}

	sections := map[string]string{}
	for i, loc := range locs {
		name := strings.ToUpper(content[loc[2]:loc[3]])
		bodyStart := loc[1]
		bodyEnd := len(content)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		sections[name] = strings.TrimSpace(content[bodyStart:bodyEnd])
	}

	return report.AnalysisResult{
		HealthSummary:   fallbackText(sections["HEALTH_SUMMARY"], sentinelSummary),
		RiskAreas:       fallbackText(sections["RISK_AREAS"], sentinelRiskAreas),
		Recommendations: fallbackText(sections["RECOMMENDATIONS"], sentinelRecommendations),
		Provider:        providerName,
	}, true
}

func fallbackText(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
