package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
)

func obs(name string, severity int, day int) report.SymptomObservation {
	return report.SymptomObservation{
		SymptomName: name,
		Severity:    severity,
		ObservedAt:  time.Date(2026, 8, day, 10, 0, 0, 0, time.UTC),
	}
}

func TestHeuristicDeterminism(t *testing.T) {
	t.Parallel()

	p := NewHeuristicProvider()
	in := report.AnalysisInput{
		UserID: 7,
		Observations: []report.SymptomObservation{
			obs("Headache", 7, 1), obs("Fatigue", 5, 2), obs("Headache", 8, 3),
		},
	}

	first, err := p.Analyze(context.Background(), in)
	require.NoError(t, err)
	second, err := p.Analyze(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, NameHeuristic, first.Provider)
}

func TestHeuristicFrequentSevereHeadaches(t *testing.T) {
	t.Parallel()

	p := NewHeuristicProvider()
	in := report.AnalysisInput{
		Observations: []report.SymptomObservation{
			obs("Headache", 7, 1),
			obs("Headache", 8, 2),
			obs("Headache", 9, 3),
			obs("Headache", 7, 4),
			obs("Headache", 9, 5),
		},
	}

	res, err := p.Analyze(context.Background(), in)
	require.NoError(t, err)

	assert.Contains(t, res.HealthSummary, "Total symptom entries recorded: 5")
	assert.Contains(t, res.HealthSummary, "Average severity level: 8.0/10")
	assert.Contains(t, res.HealthSummary, "Headache (5 times)")
	assert.Contains(t, res.HealthSummary, "Concerning symptom levels requiring medical evaluation")

	assert.Contains(t, res.RiskAreas, "High severity symptoms consistently reported")
	assert.Contains(t, res.RiskAreas, "Frequent headaches")

	assert.Contains(t, res.Recommendations, "medical consultation")
	assert.Contains(t, res.Recommendations, "Monitor headache triggers")
	assert.Contains(t, res.Recommendations, "informational purposes only")
}

func TestHeuristicTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		severity int
		want     string
	}{
		{"mild below four", 2, "Mild symptoms with good management"},
		{"moderate below seven", 5, "Moderate symptoms requiring attention"},
		{"concerning at seven", 7, "Concerning symptom levels requiring medical evaluation"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := NewHeuristicProvider().Analyze(context.Background(), report.AnalysisInput{
				Observations: []report.SymptomObservation{obs("Nausea", tt.severity, 1)},
			})
			require.NoError(t, err)
			assert.Contains(t, res.HealthSummary, tt.want)
		})
	}
}

func TestHeuristicTopSymptomsOrdering(t *testing.T) {
	t.Parallel()

	// Dizziness and Nausea tie on count; Dizziness was seen first and must
	// come first.  Fatigue leads with three entries.
	in := report.AnalysisInput{
		Observations: []report.SymptomObservation{
			obs("Dizziness", 3, 1),
			obs("Nausea", 3, 1),
			obs("Fatigue", 3, 2),
			obs("Fatigue", 3, 3),
			obs("Dizziness", 3, 4),
			obs("Nausea", 3, 5),
			obs("Fatigue", 3, 6),
		},
	}

	res, err := NewHeuristicProvider().Analyze(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, res.HealthSummary,
		"Most frequently reported symptoms: Fatigue (3 times), Dizziness (2 times), Nausea (2 times)")
}

func TestHeuristicNoObservations(t *testing.T) {
	t.Parallel()

	res, err := NewHeuristicProvider().Analyze(context.Background(), report.AnalysisInput{})
	require.NoError(t, err)

	assert.Contains(t, res.HealthSummary, "Total symptom entries recorded: 0")
	assert.Contains(t, res.HealthSummary, "Average severity level: 0.0/10")
	assert.Contains(t, res.HealthSummary, "Mild symptoms with good management")
	assert.Equal(t, "No significant risk areas identified based on current symptom patterns.", res.RiskAreas)
}

func TestHeuristicFatigueRisk(t *testing.T) {
	t.Parallel()

	in := report.AnalysisInput{
		Observations: []report.SymptomObservation{
			obs("Fatigue", 4, 1), obs("Fatigue", 4, 2), obs("Fatigue", 4, 3),
			obs("Fatigue", 4, 4), obs("Fatigue", 4, 5),
		},
	}

	res, err := NewHeuristicProvider().Analyze(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, res.RiskAreas, "Persistent fatigue warrants evaluation")
	assert.NotContains(t, res.RiskAreas, "High severity")
}
