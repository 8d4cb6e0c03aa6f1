package report

import (
	"time"

	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// Report is the persisted outcome of one successful analysis run.
//
// Lifecycle: created by the orchestrator immediately after a successful
// analysis (ID and GeneratedAt assigned by the store on save); mutated exactly
// once more by the detached render stage, which attaches ArtifactRef; deleted
// on explicit user request.  The analysis fields are copied from the
// AnalysisResult at creation and never change afterwards.
//
// ArtifactRef may remain empty indefinitely: an absent artifact is a valid,
// queryable state, never an error state.
type Report struct {
	ID          common.ReportID `json:"id"`
	UserID      common.UserID   `json:"user_id"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	GeneratedAt time.Time       `json:"generated_at"`

	HealthSummary   string `json:"health_summary"`
	RiskAreas       string `json:"risk_areas"`
	Recommendations string `json:"recommendations"`

	// Provider records which analysis backend produced the report.
	Provider string `json:"provider"`

	// ArtifactRef is the opaque locator of the rendered document; empty when
	// no artifact has been produced yet (or ever).
	ArtifactRef string `json:"artifact_ref,omitempty"`
}

// HasArtifact reports whether a rendered document is attached.
func (r *Report) HasArtifact() bool {
	return r.ArtifactRef != ""
}

// NewReport folds an analysis result into a fresh, unpersisted Report.
func NewReport(userID common.UserID, start, end time.Time, res AnalysisResult) *Report {
	return &Report{
		UserID:          userID,
		PeriodStart:     start,
		PeriodEnd:       end,
		HealthSummary:   res.HealthSummary,
		RiskAreas:       res.RiskAreas,
		Recommendations: res.Recommendations,
		Provider:        res.Provider,
	}
}
