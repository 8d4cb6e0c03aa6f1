package provider

import (
	"fmt"
	"strings"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
)

// buildAnalysisPrompt renders the structured prompt submitted to networked
// providers.  The exact wording is a provider detail, but the three section
// markers must match what parseAnalysisContent recognises so the text
// fallback path can recover sections from free-form replies.
func buildAnalysisPrompt(in report.AnalysisInput) string {
	var b strings.Builder

	b.WriteString("You are a healthcare analytics AI assistant. Analyze the following symptom data and provide insights.\n\n")
	b.WriteString("IMPORTANT: Do not provide medical diagnosis or treatment advice. Focus on general health patterns and lifestyle recommendations.\n\n")

	if !in.Demographics.IsZero() {
		b.WriteString("Client Demographics:\n")
		fmt.Fprintf(&b, "- Age: %d\n", in.Demographics.Age)
		fmt.Fprintf(&b, "- Gender: %s\n", in.Demographics.Gender)
		fmt.Fprintf(&b, "- Weight: %.1f kg\n", in.Demographics.Weight)
		fmt.Fprintf(&b, "- Height: %s\n", in.Demographics.Height)
		fmt.Fprintf(&b, "- Nationality: %s\n\n", in.Demographics.Nationality)
	}

	b.WriteString("Symptom Data:\n")
	if len(in.Observations) == 0 {
		b.WriteString("- No symptoms recorded in this period\n")
	}
	for _, o := range in.Observations {
		fmt.Fprintf(&b, "- %s: Severity %d/10 on %s", o.SymptomName, o.Severity, o.ObservedAt.Format("2006-01-02"))
		if o.Note != "" {
			fmt.Fprintf(&b, " (Notes: %s)", o.Note)
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nPlease provide:\n")
	b.WriteString("1. HEALTH_SUMMARY: Overall health trend analysis\n")
	b.WriteString("2. RISK_AREAS: Areas that may need attention (non-diagnostic)\n")
	b.WriteString("3. RECOMMENDATIONS: Lifestyle and wellness suggestions\n\n")
	b.WriteString("Format your response as JSON with keys: healthSummary, riskAreas, recommendations")

	return b.String()
}
