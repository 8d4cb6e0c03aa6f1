package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
)

// HeuristicProvider is the local analysis fallback.  It synthesises the three
// report sections deterministically from symptom-frequency and mean-severity
// statistics.  It requires no network access, never fails, and always reports
// available, so registering it last guarantees fallback terminates.
type HeuristicProvider struct{}

// NewHeuristicProvider returns the local heuristic provider.
func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{}
}

func (p *HeuristicProvider) Name() string { return NameHeuristic }

// Available always returns true; the heuristic has no external dependency.
func (p *HeuristicProvider) Available(ctx context.Context) bool { return true }

// Severity tier boundaries for the overall-trend line.
const (
	mildSeverityCeiling     = 4.0
	moderateSeverityCeiling = 7.0
)

type symptomStat struct {
	name      string
	count     int
	firstSeen int // index of first occurrence; tie-breaker for stable ordering
}

func (p *HeuristicProvider) Analyze(_ context.Context, in report.AnalysisInput) (report.AnalysisResult, error) {
	stats, avgSeverity := summarize(in.Observations)

	return report.AnalysisResult{
		HealthSummary:   p.healthSummary(stats, avgSeverity, len(in.Observations)),
		RiskAreas:       p.riskAreas(stats, avgSeverity),
		Recommendations: p.recommendations(stats, avgSeverity),
		Provider:        NameHeuristic,
	}, nil
}

// summarize computes per-symptom counts (ordered by descending count, ties
// broken by first-seen order) and the mean severity.
func summarize(obs []report.SymptomObservation) ([]symptomStat, float64) {
	index := make(map[string]int)
	stats := make([]symptomStat, 0)
	severitySum := 0

	for i, o := range obs {
		severitySum += o.Severity
		if pos, ok := index[o.SymptomName]; ok {
			stats[pos].count++
			continue
		}
		index[o.SymptomName] = len(stats)
		stats = append(stats, symptomStat{name: o.SymptomName, count: 1, firstSeen: i})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].firstSeen < stats[j].firstSeen
	})

	avg := 0.0
	if len(obs) > 0 {
		avg = float64(severitySum) / float64(len(obs))
	}
	return stats, avg
}

func (p *HeuristicProvider) healthSummary(stats []symptomStat, avgSeverity float64, total int) string {
	var b strings.Builder
	b.WriteString("Health Summary for the Week:\n\n")
	fmt.Fprintf(&b, "Total symptom entries recorded: %d\n", total)
	fmt.Fprintf(&b, "Average severity level: %.1f/10\n", avgSeverity)

	top := make([]string, 0, 3)
	for _, s := range stats {
		if len(top) == 3 {
			break
		}
		top = append(top, fmt.Sprintf("%s (%d times)", s.name, s.count))
	}
	fmt.Fprintf(&b, "Most frequently reported symptoms: %s\n\n", strings.Join(top, ", "))

	switch {
	case avgSeverity < mildSeverityCeiling:
		b.WriteString("Overall trend: Mild symptoms with good management.")
	case avgSeverity < moderateSeverityCeiling:
		b.WriteString("Overall trend: Moderate symptoms requiring attention.")
	default:
		b.WriteString("Overall trend: Concerning symptom levels requiring medical evaluation.")
	}
	return b.String()
}

func (p *HeuristicProvider) riskAreas(stats []symptomStat, avgSeverity float64) string {
	var b strings.Builder

	if avgSeverity > 6 {
		b.WriteString("High severity symptoms consistently reported\n")
	}
	for _, s := range stats {
		switch {
		case s.name == "Headache" && s.count > 3:
			b.WriteString("Frequent headaches may indicate stress, dehydration, or other underlying issues\n")
		case s.name == "Fatigue" && s.count > 4:
			b.WriteString("Persistent fatigue warrants evaluation of sleep patterns and stress levels\n")
		}
	}

	if b.Len() == 0 {
		return "No significant risk areas identified based on current symptom patterns."
	}
	return b.String()
}

func (p *HeuristicProvider) recommendations(stats []symptomStat, avgSeverity float64) string {
	var b strings.Builder
	b.WriteString("Personalized Recommendations:\n\n")
	b.WriteString("1. Maintain consistent sleep schedule (7-9 hours nightly)\n")
	b.WriteString("2. Stay hydrated (8-10 glasses of water daily)\n")
	b.WriteString("3. Practice stress management techniques (meditation, deep breathing)\n")
	b.WriteString("4. Maintain regular physical activity as tolerated\n")

	next := 5
	if avgSeverity > 6 {
		fmt.Fprintf(&b, "%d. Consider scheduling a medical consultation for persistent high-severity symptoms\n", next)
		next++
	}
	for _, s := range stats {
		if s.name == "Headache" {
			fmt.Fprintf(&b, "%d. Monitor headache triggers (screen time, lighting, stress, food)\n", next)
			next++
			break
		}
	}

	b.WriteString("\nIMPORTANT: This analysis is for informational purposes only and should not replace professional medical advice.")
	return b.String()
}
