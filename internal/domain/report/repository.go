package report

import (
	"context"
	"time"

	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// Store is the persistence boundary for Report records.  Implementations must
// scope every read and delete by user so that ownership is enforced at the
// lowest layer: a lookup with the wrong user behaves exactly like a lookup of
// a missing report.
type Store interface {
	// Save persists a new Report, assigning ID and GeneratedAt.  The returned
	// Report is the persisted state.
	Save(ctx context.Context, r *Report) (*Report, error)

	// AttachArtifact records the artifact reference for an existing report.
	// It is the only permitted mutation after Save.
	AttachArtifact(ctx context.Context, id common.ReportID, ref string) error

	// FindByID returns the report with the given id owned by userID, or a
	// report-not-found error.
	FindByID(ctx context.Context, userID common.UserID, id common.ReportID) (*Report, error)

	// ListByUser returns the user's reports ordered by GeneratedAt descending.
	ListByUser(ctx context.Context, userID common.UserID, page common.PageRequest) (common.Page[*Report], error)

	// Delete removes the report owned by userID.  Deleting a missing report
	// returns a report-not-found error.
	Delete(ctx context.Context, userID common.UserID, id common.ReportID) error
}

// DemographicsSource resolves the subject demographics embedded into analysis
// input.  It is an external collaborator; the user/profile subsystem owns the
// data.
type DemographicsSource interface {
	// GetDemographics returns the demographics for userID, or a
	// subject/demographics not-found error.
	GetDemographics(ctx context.Context, userID common.UserID) (Demographics, error)
}

// ObservationSource lists a user's symptom observations for a date range,
// ordered by observation date descending.  It is an external collaborator;
// the symptom-entry subsystem owns the data.
type ObservationSource interface {
	ListObservations(ctx context.Context, userID common.UserID, start, end time.Time) ([]SymptomObservation, error)
}
