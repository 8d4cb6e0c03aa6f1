package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/pkg/errors"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func validInput() report.AnalysisInput {
	return report.AnalysisInput{
		UserID:      common.UserID(1),
		PeriodStart: day("2026-08-01"),
		PeriodEnd:   day("2026-08-07"),
		Observations: []report.SymptomObservation{
			{SymptomName: "Headache", Category: "Neurological", Severity: 6, ObservedAt: day("2026-08-03")},
		},
		Demographics: report.Demographics{Age: 30, Gender: "F", Weight: 65, Height: "165cm", Nationality: "X"},
	}
}

func TestAnalysisInput_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid input passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validInput().Validate())
	})

	t.Run("inverted period rejected", func(t *testing.T) {
		t.Parallel()
		in := validInput()
		in.PeriodStart, in.PeriodEnd = in.PeriodEnd, in.PeriodStart
		err := in.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeReportInvalidPeriod))
	})

	t.Run("severity out of range rejected", func(t *testing.T) {
		t.Parallel()
		for _, sev := range []int{0, 11, -1} {
			in := validInput()
			in.Observations[0].Severity = sev
			assert.Error(t, in.Validate(), "severity %d must be rejected", sev)
		}
	})

	t.Run("overlong note rejected", func(t *testing.T) {
		t.Parallel()
		in := validInput()
		in.Observations[0].Note = string(make([]byte, report.MaxObservationNoteLen+1))
		assert.Error(t, in.Validate())
	})

	t.Run("invalid demographics rejected", func(t *testing.T) {
		t.Parallel()
		in := validInput()
		in.Demographics.Age = -1
		assert.Error(t, in.Validate())

		in = validInput()
		in.Demographics.Weight = 0
		assert.Error(t, in.Validate())
	})

	t.Run("absent demographics allowed", func(t *testing.T) {
		t.Parallel()
		in := validInput()
		in.Demographics = report.Demographics{}
		assert.NoError(t, in.Validate(), "missing demographics must degrade the prompt, not block analysis")
	})

	t.Run("empty observation list is valid at this layer", func(t *testing.T) {
		t.Parallel()
		in := validInput()
		in.Observations = nil
		assert.NoError(t, in.Validate(), "minimum-data policy is enforced by the orchestrator, not the value object")
	})
}

func TestAnalysisResult_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, report.AnalysisResult{}.Empty())
	assert.False(t, report.AnalysisResult{HealthSummary: "ok"}.Empty())
	assert.False(t, report.AnalysisResult{Recommendations: "rest"}.Empty())
}

func TestNewReport_CopiesAnalysisFieldsOnce(t *testing.T) {
	t.Parallel()

	res := report.AnalysisResult{
		HealthSummary:   "summary",
		RiskAreas:       "risks",
		Recommendations: "recs",
		Provider:        "heuristic",
	}
	r := report.NewReport(common.UserID(7), day("2026-08-01"), day("2026-08-07"), res)

	assert.Equal(t, common.UserID(7), r.UserID)
	assert.Equal(t, "summary", r.HealthSummary)
	assert.Equal(t, "risks", r.RiskAreas)
	assert.Equal(t, "recs", r.Recommendations)
	assert.Equal(t, "heuristic", r.Provider)
	assert.False(t, r.HasArtifact())

	r.ArtifactRef = "reports/7/1.pdf"
	assert.True(t, r.HasArtifact())
}
