// Package report defines the report domain: the Report entity, the analysis
// input/result value objects, and the persistence and collaborator contracts
// the orchestration layer depends on.
package report

import (
	"time"

	"github.com/medmuse/medmuse-backend/pkg/errors"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// MaxObservationNoteLen caps the free-text note attached to an observation.
const MaxObservationNoteLen = 1000

// SymptomObservation is a single dated symptom record inside an analysis
// input.  Observations are ordered by the source query and never reordered by
// the pipeline.
type SymptomObservation struct {
	SymptomName string    `json:"symptom_name"`
	Category    string    `json:"category"`
	Severity    int       `json:"severity"` // 1..10
	Note        string    `json:"note,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

// Validate checks the observation invariants.
func (o SymptomObservation) Validate() error {
	if o.SymptomName == "" {
		return errors.InvalidRequest("symptom name must not be empty")
	}
	if o.Severity < 1 || o.Severity > 10 {
		return errors.InvalidRequest("severity must be between 1 and 10")
	}
	if len(o.Note) > MaxObservationNoteLen {
		return errors.InvalidRequest("observation note exceeds 1000 characters")
	}
	return nil
}

// Demographics carries the subject attributes embedded into analysis prompts.
type Demographics struct {
	Age         int     `json:"age"`
	Gender      string  `json:"gender"`
	Weight      float64 `json:"weight"` // kilograms
	Height      string  `json:"height"` // free-form label, e.g. "165cm"
	Nationality string  `json:"nationality"`
}

// IsZero reports whether no demographics are on file.  The zero value is a
// valid analysis input state: the prompt simply omits the subject block.
func (d Demographics) IsZero() bool {
	return d == Demographics{}
}

// Validate checks the demographic invariants.
func (d Demographics) Validate() error {
	if d.Age < 0 {
		return errors.InvalidRequest("age must not be negative")
	}
	if d.Weight <= 0 {
		return errors.InvalidRequest("weight must be positive")
	}
	return nil
}

// AnalysisInput is the immutable value object handed to an analysis provider.
// It is built fresh per request from the demographics and observation sources
// and never persisted.
type AnalysisInput struct {
	UserID       common.UserID        `json:"user_id"`
	PeriodStart  time.Time            `json:"period_start"`
	PeriodEnd    time.Time            `json:"period_end"`
	Observations []SymptomObservation `json:"observations"`
	Demographics Demographics         `json:"demographics"`
}

// Validate checks the input invariants: a non-inverted period, valid
// observations, and valid demographics.  Absent demographics (the zero value)
// are allowed; they degrade the prompt rather than block analysis.
func (in AnalysisInput) Validate() error {
	if in.PeriodStart.After(in.PeriodEnd) {
		return errors.New(errors.ErrCodeReportInvalidPeriod, "period start must not be after period end")
	}
	if !in.Demographics.IsZero() {
		if err := in.Demographics.Validate(); err != nil {
			return err
		}
	}
	for _, o := range in.Observations {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AnalysisResult is the provider output folded into a Report.  It has no
// identity and is consumed exactly once by the orchestrator.
type AnalysisResult struct {
	HealthSummary   string `json:"health_summary"`
	RiskAreas       string `json:"risk_areas"`
	Recommendations string `json:"recommendations"`
	Provider        string `json:"provider"`
}

// Empty reports whether all analysis sections are blank.  The orchestrator
// rejects empty results so a Report never carries empty analysis fields.
func (r AnalysisResult) Empty() bool {
	return r.HealthSummary == "" && r.RiskAreas == "" && r.Recommendations == ""
}
